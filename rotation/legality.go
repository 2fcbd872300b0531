package rotation

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

type Outcome int

const (
	IncompleteRoster Outcome = iota
	IncompleteZones
	Violations
	Legal
)

func (o Outcome) String() string {
	switch o {
	case IncompleteRoster:
		return "incomplete-roster"
	case IncompleteZones:
		return "incomplete-zones"
	case Violations:
		return "violations"
	case Legal:
		return "legal"
	}
	return "unknown"
}

type Result struct {
	Outcome   Outcome
	Messages  []string
	Violators mapset.Set[string]
}

// ViolatorIDs returns the violator set sorted, for transport.
func (r Result) ViolatorIDs() []string {
	if r.Violators == nil {
		return []string{}
	}
	ids := r.Violators.ToSlice()
	slices.Sort(ids)
	return ids
}

func (r Result) IsViolator(id string) bool {
	return r.Violators != nil && r.Violators.Contains(id)
}

// Summary is the text shown to the coach after a check.
func (r Result) Summary() string {
	switch r.Outcome {
	case IncompleteRoster:
		return "Must have exactly 6 players assigned to zones 1–6."
	case IncompleteZones:
		return "All zones 1–6 must be assigned."
	case Legal:
		return "Rotation is legal!"
	}
	return "Illegal rotation:\n" + strings.Join(r.Messages, ";\n")
}

type axis int

const (
	axisY axis = iota // "behind": a.y >= b.y
	axisX             // "right of": a.x >= b.x
)

type constraint struct {
	a, b int
	axis axis
}

// overlapRules is the fixed set of ordering constraints between zones.
var overlapRules = []constraint{
	{1, 2, axisY},
	{6, 3, axisY},
	{5, 4, axisY},
	{2, 3, axisX},
	{3, 4, axisX},
	{1, 6, axisX},
	{6, 5, axisX},
}

func (c constraint) fails(a, b Player) bool {
	if c.axis == axisY {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func (c constraint) message(a, b Player) string {
	if c.axis == axisY {
		return fmt.Sprintf("%s must be behind %s", a.DisplayName(), b.DisplayName())
	}
	return fmt.Sprintf("%s must be to the right of %s", a.DisplayName(), b.DisplayName())
}

// Check evaluates the overlap rules on a slot. It never modifies the slot.
func Check(slot Slot) Result {
	result := Result{Messages: []string{}, Violators: mapset.NewThreadUnsafeSet[string]()}

	if len(slot) != 6 {
		result.Outcome = IncompleteRoster
		return result
	}

	byZone := make(map[int]Player, 6)
	for _, p := range slot {
		if n, ok := p.Zone.Get(); ok {
			byZone[n] = p
		}
	}
	for n := 1; n <= 6; n++ {
		if _, ok := byZone[n]; !ok {
			result.Outcome = IncompleteZones
			return result
		}
	}

	for _, c := range overlapRules {
		a, b := byZone[c.a], byZone[c.b]
		if c.fails(a, b) {
			result.Messages = append(result.Messages, c.message(a, b))
			result.Violators.Add(a.ID)
			result.Violators.Add(b.ID)
		}
	}

	if len(result.Messages) == 0 {
		result.Outcome = Legal
	} else {
		result.Outcome = Violations
	}
	return result
}
