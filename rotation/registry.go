package rotation

import "slices"

// Slot holds the players of one serve rotation in display order.
type Slot []Player

// Find returns the player with the given id.
func (s Slot) Find(id string) (Player, bool) {
	for _, p := range s {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Clone copies the slot so the result never shares a backing array with s.
func (s Slot) Clone() Slot {
	if s == nil {
		return Slot{}
	}
	return slices.Clone(s)
}

// Edit changes one field of a player.
type Edit func(p *Player)

func SetLabel(label string) Edit { return func(p *Player) { p.Label = label } }

func SetName(name string) Edit { return func(p *Player) { p.Name = name } }

func SetX(x float64) Edit { return func(p *Player) { p.X = x } }

func SetY(y float64) Edit { return func(p *Player) { p.Y = y } }

func SetZone(z Zone) Edit { return func(p *Player) { p.Zone = z } }

func ClearZone() Edit { return func(p *Player) { p.Zone = NoZone } }

// MoveBy shifts a player by a drag delta. Coordinates are not clamped to the court.
func MoveBy(dx, dy float64) Edit {
	return func(p *Player) {
		p.X += dx
		p.Y += dy
	}
}

// Add appends a new player with a fresh id. Fields start from the defaults
// (label "New", empty name, no zone, at 100,100) and then take the given edits.
func Add(slot Slot, ids IDGenerator, edits ...Edit) Slot {
	p := Player{
		ID:    ids.Generate(),
		Label: DefaultLabel,
		X:     DefaultX,
		Y:     DefaultY,
	}
	for _, edit := range edits {
		edit(&p)
	}
	// the id is assigned once, edits cannot change it
	out := make(Slot, 0, len(slot)+1)
	out = append(out, slot...)
	return append(out, p)
}

// Update applies edit to the player with the given id. Unknown ids are ignored.
func Update(slot Slot, id string, edit Edit) Slot {
	out := slot.Clone()
	for i := range out {
		if out[i].ID == id {
			pid := out[i].ID
			edit(&out[i])
			out[i].ID = pid
		}
	}
	return out
}

// Remove drops the player with the given id. Unknown ids are ignored.
func Remove(slot Slot, id string) Slot {
	out := make(Slot, 0, len(slot))
	for _, p := range slot {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
