// Package journal records the decisions handed to units during simulated
// battles so runs can be compared offline.
package journal

import (
	"context"

	"github.com/udisondev/tacticai/internal/model"
)

// Entry is one decision (or squad order) applied to one unit.
type Entry struct {
	Battle   string
	Tick     uint64
	Unit     model.UnitID
	Org      model.OrgID
	Source   string
	Action   string
	Movement string
	Detail   string
}

// NewEntry flattens a decision into a journal row.
func NewEntry(battleID string, tick uint64, unit model.UnitID, org model.OrgID, d model.Decision) Entry {
	e := Entry{
		Battle: battleID,
		Tick:   tick,
		Unit:   unit,
		Org:    org,
		Source: d.Source,
		Detail: d.String(),
	}
	if d.Action != nil {
		e.Action = d.Action.Kind.String()
	}
	if d.Movement != nil {
		e.Movement = d.Movement.Kind.String()
	}
	return e
}

// Repeats reports whether e records the same decision for the same unit as
// prev, whatever the tick.
func (e Entry) Repeats(prev Entry) bool {
	e.Tick = prev.Tick
	return e == prev
}

// Outcome closes a battle record.
type Outcome struct {
	Battle    string
	Seed      uint64
	Winner    model.OrgID
	Ticks     uint64
	Decisions int
}

// Recorder persists journal entries.
type Recorder interface {
	Record(ctx context.Context, entries []Entry) error
	Finish(ctx context.Context, o Outcome) error
}

type discard struct{}

func (discard) Record(context.Context, []Entry) error { return nil }
func (discard) Finish(context.Context, Outcome) error { return nil }

// Discard drops everything.
var Discard Recorder = discard{}
