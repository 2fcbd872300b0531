package rotation

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionTable maps zones 1..6 (index 0..5) to a court position.
type PositionTable [6]Point

// DefaultPositions is the canonical base position of every zone.
var DefaultPositions = PositionTable{
	{X: 650, Y: 525},
	{X: 625, Y: 100},
	{X: 400, Y: 100},
	{X: 150, Y: 100},
	{X: 150, Y: 525},
	{X: 400, Y: 525},
}

func (t PositionTable) At(z Zone) (Point, bool) {
	n, ok := z.Get()
	if !ok {
		return Point{}, false
	}
	return t[n-1], true
}

// NextZone moves a zone one serve position: 1->6, 2->1, 3->2 ... 6->5.
func NextZone(z Zone) Zone {
	n, ok := z.Get()
	if !ok {
		return NoZone
	}
	return ZoneOf(((n + 4) % 6) + 1)
}

// Derive builds the rotation that follows source. Every player gets a fresh id
// so the derived slot can be edited independently of its source.
func Derive(source Slot, table PositionTable, ids IDGenerator) Slot {
	out := make(Slot, 0, len(source))
	for _, p := range source {
		next := p
		next.ID = ids.Generate()
		next.Zone = NextZone(p.Zone)
		if pos, ok := table.At(next.Zone); ok {
			next.X = pos.X
			next.Y = pos.Y
		}
		out = append(out, next)
	}
	return out
}
