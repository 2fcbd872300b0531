package rotation

import (
	"errors"

	"github.com/mattfehr/volleyball-rotation-tracker/annotation"
)

const (
	SlotCount    = 6
	DefaultTitle = "Untitled Rotation"
)

var ErrSlotOutOfRange = errors.New("slot-out-of-range")

// Set is the six serve rotations R1..R6 with their annotation layers. Exactly
// one slot is active; registry results are written back with ReplaceActive.
type Set struct {
	Title  string
	slots  [SlotCount]Slot
	layers [SlotCount]*annotation.Layer
	active int
}

func NewSet(title string, opts ...annotation.LayerOption) *Set {
	s := &Set{Title: title}
	for i := range s.slots {
		s.slots[i] = Slot{}
		s.layers[i] = annotation.NewLayer(opts...)
	}
	return s
}

// NewDefaultSet is the state a fresh editor opens with: a setter in zone 1 on R1.
func NewDefaultSet(ids IDGenerator, opts ...annotation.LayerOption) *Set {
	s := NewSet(DefaultTitle, opts...)
	s.slots[0] = Add(nil, ids,
		SetLabel("S"),
		SetName("Alex"),
		SetX(DefaultPositions[0].X),
		SetY(DefaultPositions[0].Y),
		SetZone(ZoneOf(1)),
	)
	return s
}

func (s *Set) Active() int {
	return s.active
}

func (s *Set) Select(i int) error {
	if i < 0 || i >= SlotCount {
		return ErrSlotOutOfRange
	}
	s.active = i
	return nil
}

// Next moves to the following rotation, staying on R6 at the end.
func (s *Set) Next() {
	s.active = min(s.active+1, SlotCount-1)
}

// Prev moves to the previous rotation, staying on R1 at the start.
func (s *Set) Prev() {
	s.active = max(s.active-1, 0)
}

// PreviousIndex is the slot before the active one, wrapping from R1 to R6.
func (s *Set) PreviousIndex() int {
	return (s.active + SlotCount - 1) % SlotCount
}

// Slot returns a copy of slot i. Out of range indexes yield an empty slot.
func (s *Set) Slot(i int) Slot {
	if i < 0 || i >= SlotCount {
		return Slot{}
	}
	return s.slots[i].Clone()
}

func (s *Set) ActiveSlot() Slot {
	return s.Slot(s.active)
}

func (s *Set) SetSlot(i int, slot Slot) error {
	if i < 0 || i >= SlotCount {
		return ErrSlotOutOfRange
	}
	s.slots[i] = slot.Clone()
	return nil
}

func (s *Set) ReplaceActive(slot Slot) {
	s.slots[s.active] = slot.Clone()
}

// Slots returns copies of all six slots in order.
func (s *Set) Slots() []Slot {
	out := make([]Slot, SlotCount)
	for i := range s.slots {
		out[i] = s.slots[i].Clone()
	}
	return out
}

func (s *Set) Layer(i int) *annotation.Layer {
	if i < 0 || i >= SlotCount {
		return nil
	}
	return s.layers[i]
}

func (s *Set) ActiveLayer() *annotation.Layer {
	return s.layers[s.active]
}

// RotateFromPrevious replaces the active slot with the rotation derived from
// the slot before it. Whatever the active slot held is discarded.
func (s *Set) RotateFromPrevious(table PositionTable, ids IDGenerator) Slot {
	derived := Derive(s.slots[s.PreviousIndex()], table, ids)
	s.slots[s.active] = derived
	return derived.Clone()
}

// Replace swaps in a whole new state and goes back to R1. Callers check the
// shape first; short inputs leave the missing slots empty.
func (s *Set) Replace(title string, slots []Slot, strokes [][]annotation.Stroke) {
	s.Title = title
	for i := range s.slots {
		s.slots[i] = Slot{}
		if i < len(slots) {
			s.slots[i] = slots[i].Clone()
		}
		var layerStrokes []annotation.Stroke
		if i < len(strokes) {
			layerStrokes = strokes[i]
		}
		s.layers[i].Reset(layerStrokes)
	}
	s.active = 0
}

func (s *Set) Clone() *Set {
	c := &Set{Title: s.Title, active: s.active}
	for i := range s.slots {
		c.slots[i] = s.slots[i].Clone()
		c.layers[i] = s.layers[i].Clone()
	}
	return c
}
