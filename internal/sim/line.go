package sim

import "github.com/udisondev/tacticai/internal/model"

// lineIterator walks the tiles of a 3D Bresenham line from start to end, both inclusive.
type lineIterator struct {
	cur, target model.Vec3
	delta, step model.Vec3
	errA, errB  int
	dominant    int // 0=X, 1=Y, 2=Z
	started     bool
}

func newLineIterator(from, to model.Vec3) *lineIterator {
	it := &lineIterator{cur: from, target: to}
	it.delta = model.Vec3{X: absInt(to.X - from.X), Y: absInt(to.Y - from.Y), Z: absInt(to.Z - from.Z)}
	it.step = model.Vec3{X: stepTo(from.X, to.X), Y: stepTo(from.Y, to.Y), Z: stepTo(from.Z, to.Z)}

	d := it.delta
	switch {
	case d.X >= d.Y && d.X >= d.Z:
		it.dominant = 0
		it.errA, it.errB = d.X/2, d.X/2
	case d.Y >= d.X && d.Y >= d.Z:
		it.dominant = 1
		it.errA, it.errB = d.Y/2, d.Y/2
	default:
		it.dominant = 2
		it.errA, it.errB = d.Z/2, d.Z/2
	}
	return it
}

// Next advances to the next tile. The first call yields the start tile.
func (it *lineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.cur == it.target {
		return false
	}

	d, s := it.delta, it.step
	switch it.dominant {
	case 0:
		it.cur.X += s.X
		it.cur.Y, it.errA = advance(it.cur.Y, s.Y, it.errA, d.Y, d.X)
		it.cur.Z, it.errB = advance(it.cur.Z, s.Z, it.errB, d.Z, d.X)
	case 1:
		it.cur.Y += s.Y
		it.cur.X, it.errA = advance(it.cur.X, s.X, it.errA, d.X, d.Y)
		it.cur.Z, it.errB = advance(it.cur.Z, s.Z, it.errB, d.Z, d.Y)
	case 2:
		it.cur.Z += s.Z
		it.cur.X, it.errA = advance(it.cur.X, s.X, it.errA, d.X, d.Z)
		it.cur.Y, it.errB = advance(it.cur.Y, s.Y, it.errB, d.Y, d.Z)
	}
	return true
}

// Tile returns the current tile.
func (it *lineIterator) Tile() model.Vec3 { return it.cur }

func advance(v, step, err, minor, major int) (int, int) {
	err += minor
	if err >= major {
		v += step
		err -= major
	}
	return v, err
}

func stepTo(from, to int) int {
	if from < to {
		return 1
	}
	return -1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
