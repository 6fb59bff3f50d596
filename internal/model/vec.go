package model

import "math"

// UnitID identifies a combatant for the lifetime of a battle.
type UnitID uint32

// ItemID identifies a piece of equipment.
type ItemID uint32

// OrgID identifies an organisation (faction) taking part in a battle.
type OrgID string

// Vec3 is a tile coordinate on the battle map. Value type, passed by value.
type Vec3 struct {
	X int
	Y int
	Z int
}

// NoPosition marks an unset latch position.
var NoPosition = Vec3{X: -1, Y: -1, Z: -1}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// DistanceSquared returns the squared euclidean distance (no sqrt).
func (v Vec3) DistanceSquared(o Vec3) int {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Distance returns the euclidean distance in tiles.
func (v Vec3) Distance(o Vec3) float64 {
	return math.Sqrt(float64(v.DistanceSquared(o)))
}

// WithinTiles reports whether o differs from v by at most n tiles on every axis.
func (v Vec3) WithinTiles(o Vec3, n int) bool {
	d := v.Sub(o)
	return abs(d.X) <= n && abs(d.Y) <= n && abs(d.Z) <= n
}

// Direction returns the per-axis sign of o-v, used as a facing vector.
func (v Vec3) Direction(o Vec3) Vec3 {
	d := o.Sub(v)
	return Vec3{X: sign(d.X), Y: sign(d.Y), Z: 0}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
