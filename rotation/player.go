package rotation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	CourtWidth  = 900.0
	CourtHeight = 900.0

	DefaultLabel = "New"
	DefaultX     = 100.0
	DefaultY     = 100.0
)

// Zone is a serve position 1..6. The zero value means the player has no zone.
type Zone struct {
	n int
}

var NoZone = Zone{}

// ZoneOf returns the zone n, or NoZone when n is outside 1..6.
func ZoneOf(n int) Zone {
	if n < 1 || n > 6 {
		return NoZone
	}
	return Zone{n: n}
}

func (z Zone) Get() (int, bool) {
	return z.n, z.n != 0
}

func (z Zone) IsZero() bool {
	return z.n == 0
}

func (z Zone) String() string {
	if z.n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", z.n)
}

func (z Zone) MarshalJSON() ([]byte, error) {
	if z.n == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(z.n)
}

// UnmarshalJSON accepts a number or null. Numbers outside 1..6 are rejected so
// that a bad document never silently loses a zone.
func (z *Zone) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*z = NoZone
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("zone: %w", err)
	}
	if n < 1 || n > 6 {
		return fmt.Errorf("zone: %d is outside 1..6", n)
	}
	*z = Zone{n: n}
	return nil
}

type Player struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Zone  Zone    `json:"zone,omitzero"`
}

// DisplayName is the name shown in legality messages.
func (p Player) DisplayName() string {
	if p.Name == "" {
		return "Unnamed"
	}
	return p.Name
}
