package sim

import (
	"container/heap"
	"math"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// maxPathIterations bounds A* work per query.
const maxPathIterations = 20000

const (
	weightStraight = 1.0
	weightDiagonal = math.Sqrt2
)

// Grid is a single-level tile map split into square LOS blocks.
type Grid struct {
	width, height int
	walls         []bool
	blockSize     int
	blocksX       int
	blocksY       int
	exits         []model.Vec3
	restricted    map[battle.BlockID]map[model.OrgID]bool
}

var _ battle.Map = (*Grid)(nil)

// NewGrid creates an open map of width×height tiles.
func NewGrid(width, height, blockSize int) *Grid {
	if blockSize <= 0 {
		blockSize = 8
	}
	return &Grid{
		width:      width,
		height:     height,
		walls:      make([]bool, width*height),
		blockSize:  blockSize,
		blocksX:    (width + blockSize - 1) / blockSize,
		blocksY:    (height + blockSize - 1) / blockSize,
		restricted: make(map[battle.BlockID]map[model.OrgID]bool),
	}
}

// SetWall marks a tile as blocking movement and sight.
func (g *Grid) SetWall(t model.Vec3, wall bool) {
	if g.inBounds(t) {
		g.walls[t.Y*g.width+t.X] = wall
	}
}

// AddExit registers a tile units may leave the battle from.
func (g *Grid) AddExit(t model.Vec3) {
	g.exits = append(g.exits, t)
}

// Restrict forbids units of org from entering block b.
func (g *Grid) Restrict(b battle.BlockID, org model.OrgID) {
	if g.restricted[b] == nil {
		g.restricted[b] = make(map[model.OrgID]bool)
	}
	g.restricted[b][org] = true
}

func (g *Grid) inBounds(t model.Vec3) bool {
	return t.Z == 0 && t.X >= 0 && t.Y >= 0 && t.X < g.width && t.Y < g.height
}

func (g *Grid) Size() model.Vec3 { return model.Vec3{X: g.width, Y: g.height, Z: 1} }

func (g *Grid) CanStand(t model.Vec3) bool {
	return g.inBounds(t) && !g.walls[t.Y*g.width+t.X]
}

// HasLineOfSight traces a Bresenham line; walls between the endpoints block it.
func (g *Grid) HasLineOfSight(from, to model.Vec3) bool {
	if !g.inBounds(from) || !g.inBounds(to) {
		return false
	}
	it := newLineIterator(from, to)
	it.Next() // skip start
	for it.Next() {
		t := it.Tile()
		if t == to {
			return true
		}
		if !g.CanStand(t) {
			return false
		}
	}
	return true
}

func (g *Grid) BlockAt(t model.Vec3) (battle.BlockID, bool) {
	if !g.inBounds(t) {
		return 0, false
	}
	return battle.BlockID((t.Y/g.blockSize)*g.blocksX + t.X/g.blockSize), true
}

func (g *Grid) BlockCount() int { return g.blocksX * g.blocksY }

func (g *Grid) BlockBounds(b battle.BlockID) (lo, hi model.Vec3) {
	bx, by := int(b)%g.blocksX, int(b)/g.blocksX
	lo = model.Vec3{X: bx * g.blockSize, Y: by * g.blockSize}
	hi = model.Vec3{
		X: min(lo.X+g.blockSize, g.width) - 1,
		Y: min(lo.Y+g.blockSize, g.height) - 1,
	}
	return lo, hi
}

// BlockCenter returns the standable tile closest to the block's middle.
func (g *Grid) BlockCenter(b battle.BlockID) model.Vec3 {
	lo, hi := g.BlockBounds(b)
	mid := model.Vec3{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}
	best, bestDist := mid, -1
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			t := model.Vec3{X: x, Y: y}
			if !g.CanStand(t) {
				continue
			}
			if d := mid.DistanceSquared(t); bestDist < 0 || d < bestDist {
				best, bestDist = t, d
			}
		}
	}
	return best
}

func (g *Grid) AdjacentBlocks(b battle.BlockID) []battle.BlockID {
	bx, by := int(b)%g.blocksX, int(b)/g.blocksX
	var out []battle.BlockID
	for _, d := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
		nx, ny := bx+d[0], by+d[1]
		if nx < 0 || ny < 0 || nx >= g.blocksX || ny >= g.blocksY {
			continue
		}
		out = append(out, battle.BlockID(ny*g.blocksX+nx))
	}
	return out
}

func (g *Grid) BlockAllowed(b battle.BlockID, u battle.Unit) bool {
	return !g.restricted[b][u.Owner()]
}

func (g *Grid) blockOpen(b battle.BlockID) bool {
	lo, hi := g.BlockBounds(b)
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			if g.CanStand(model.Vec3{X: x, Y: y}) {
				return true
			}
		}
	}
	return false
}

// Reachable runs a breadth-first search over open, permitted blocks.
func (g *Grid) Reachable(from, to battle.BlockID, u battle.Unit, maxBlocks int) bool {
	if from == to {
		return true
	}
	if !g.blockOpen(to) || !g.BlockAllowed(to, u) {
		return false
	}
	depth := map[battle.BlockID]int{from: 0}
	queue := []battle.BlockID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth[cur] >= maxBlocks {
			continue
		}
		for _, n := range g.AdjacentBlocks(cur) {
			if _, seen := depth[n]; seen || !g.blockOpen(n) || !g.BlockAllowed(n, u) {
				continue
			}
			if n == to {
				return true
			}
			depth[n] = depth[cur] + 1
			queue = append(queue, n)
		}
	}
	return false
}

func (g *Grid) Exits() []model.Vec3 { return g.exits }

// ShortestPath runs A* toward the closest of targets. The returned tiles
// exclude start and end at the reached target.
func (g *Grid) ShortestPath(start model.Vec3, targets []model.Vec3, _ battle.Unit) []model.Vec3 {
	goals := make(map[model.Vec3]bool, len(targets))
	for _, t := range targets {
		if g.CanStand(t) {
			goals[t] = true
		}
	}
	if len(goals) == 0 || !g.CanStand(start) {
		return nil
	}
	if goals[start] {
		return []model.Vec3{start}
	}

	h := func(t model.Vec3) float64 {
		best := math.Inf(1)
		for goal := range goals {
			best = min(best, t.Distance(goal))
		}
		return best
	}

	open := &nodeHeap{}
	heap.Push(open, &pathNode{tile: start, f: h(start)})
	closed := make(map[model.Vec3]bool, 256)

	for range maxPathIterations {
		if open.Len() == 0 {
			return nil
		}
		cur := heap.Pop(open).(*pathNode)
		if goals[cur.tile] {
			return cur.path()
		}
		if closed[cur.tile] {
			continue
		}
		closed[cur.tile] = true

		for _, n := range g.neighbors(cur.tile) {
			if closed[n.tile] {
				continue
			}
			node := &pathNode{tile: n.tile, parent: cur, g: cur.g + n.cost}
			node.f = node.g + h(n.tile)
			heap.Push(open, node)
		}
	}
	return nil
}

type neighbor struct {
	tile model.Vec3
	cost float64
}

// neighbors yields standable tiles around t. Diagonals must not cut wall corners.
func (g *Grid) neighbors(t model.Vec3) []neighbor {
	out := make([]neighbor, 0, 8)
	var open [4]bool // N, E, S, W
	for i, d := range [4]model.Vec3{{Y: -1}, {X: 1}, {Y: 1}, {X: -1}} {
		n := t.Add(d)
		if g.CanStand(n) {
			open[i] = true
			out = append(out, neighbor{tile: n, cost: weightStraight})
		}
	}
	diagonals := [4]struct {
		d          model.Vec3
		adj1, adj2 int
	}{
		{model.Vec3{X: 1, Y: -1}, 0, 1},
		{model.Vec3{X: 1, Y: 1}, 1, 2},
		{model.Vec3{X: -1, Y: 1}, 2, 3},
		{model.Vec3{X: -1, Y: -1}, 3, 0},
	}
	for _, d := range diagonals {
		if !open[d.adj1] || !open[d.adj2] {
			continue
		}
		if n := t.Add(d.d); g.CanStand(n) {
			out = append(out, neighbor{tile: n, cost: weightDiagonal})
		}
	}
	return out
}

type pathNode struct {
	tile   model.Vec3
	parent *pathNode
	g, f   float64
	index  int
}

func (n *pathNode) path() []model.Vec3 {
	var out []model.Vec3
	for p := n; p.parent != nil; p = p.parent {
		out = append(out, p.tile)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// nodeHeap is a min-heap of path nodes by f cost.
type nodeHeap []*pathNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)        { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}
