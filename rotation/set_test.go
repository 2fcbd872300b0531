package rotation_test

import (
	"encoding/json"
	"testing"

	"github.com/mattfehr/volleyball-rotation-tracker/annotation"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultSet(t *testing.T) {
	t.Parallel()
	set := rotation.NewDefaultSet(&sequentialIDs{prefix: "p"})

	assert.Equal(t, "Untitled Rotation", set.Title)
	assert.Equal(t, 0, set.Active())
	assert.Equal(t, rotation.Slot{{ID: "p1", Label: "S", Name: "Alex", X: 650, Y: 525, Zone: rotation.ZoneOf(1)}}, set.Slot(0))
	for i := 1; i < rotation.SlotCount; i++ {
		assert.Empty(t, set.Slot(i))
	}
	for i := 0; i < rotation.SlotCount; i++ {
		require.NotNil(t, set.Layer(i))
		assert.Empty(t, set.Layer(i).Strokes())
	}
}

func TestSetNavigation(t *testing.T) {
	t.Parallel()
	set := rotation.NewSet("nav")

	set.Prev()
	assert.Equal(t, 0, set.Active(), "prev clamps at R1")
	assert.Equal(t, 5, set.PreviousIndex(), "R1 derives from R6")

	require.NoError(t, set.Select(5))
	set.Next()
	assert.Equal(t, 5, set.Active(), "next clamps at R6")
	assert.Equal(t, 4, set.PreviousIndex())

	assert.ErrorIs(t, set.Select(6), rotation.ErrSlotOutOfRange)
	assert.ErrorIs(t, set.Select(-1), rotation.ErrSlotOutOfRange)
	assert.Equal(t, 5, set.Active(), "failed select keeps the active slot")
}

func TestSetSlotsAreIndependent(t *testing.T) {
	t.Parallel()
	ids := &sequentialIDs{prefix: "p"}
	set := rotation.NewSet("independent")

	set.ReplaceActive(rotation.Add(set.ActiveSlot(), ids))
	copied := set.ActiveSlot()
	copied[0].Name = "changed outside"

	assert.Equal(t, "", set.ActiveSlot()[0].Name, "returned slots are copies")
	assert.Empty(t, set.Slot(1))
	assert.Empty(t, set.Slot(42))
	assert.ErrorIs(t, set.SetSlot(7, copied), rotation.ErrSlotOutOfRange)
}

func TestRotateFromPrevious(t *testing.T) {
	t.Parallel()
	ids := &sequentialIDs{prefix: "p"}
	set := rotation.NewSet("rotate")
	require.NoError(t, set.SetSlot(0, legalSlot()))
	require.NoError(t, set.Select(1))
	set.ReplaceActive(rotation.Add(nil, ids, rotation.SetName("discarded")))

	derived := set.RotateFromPrevious(rotation.DefaultPositions, ids)

	assert.Len(t, derived, 6)
	assert.Equal(t, derived, set.ActiveSlot())
	_, found := set.ActiveSlot().Find("p1")
	assert.False(t, found, "previous active content is replaced, not merged")
	assert.Equal(t, legalSlot(), set.Slot(0), "source untouched")
}

func TestRotateFromPreviousWrapsToLastSlot(t *testing.T) {
	t.Parallel()
	set := rotation.NewSet("wrap")
	require.NoError(t, set.SetSlot(5, legalSlot()))

	derived := set.RotateFromPrevious(rotation.DefaultPositions, &sequentialIDs{})

	assert.Len(t, derived, 6)
	assert.Equal(t, rotation.Legal, rotation.Check(set.Slot(0)).Outcome)
}

func TestSetReplaceAndClone(t *testing.T) {
	t.Parallel()
	set := rotation.NewSet("before")
	require.NoError(t, set.Select(3))
	set.ActiveLayer().Start(annotation.ToolPen, annotation.Point{X: 1, Y: 1})

	clone := set.Clone()

	stroke := annotation.Stroke{Tool: annotation.ToolPen, Color: "black", Width: 4, Points: []annotation.Point{{X: 1, Y: 2}}}
	set.Replace("after", []rotation.Slot{legalSlot()}, [][]annotation.Stroke{{stroke}})

	assert.Equal(t, "after", set.Title)
	assert.Equal(t, 0, set.Active())
	assert.Equal(t, legalSlot(), set.Slot(0))
	assert.Empty(t, set.Slot(1))
	assert.Equal(t, []annotation.Stroke{stroke}, set.Layer(0).Strokes())
	assert.Equal(t, annotation.Idle, set.Layer(3).State())

	assert.Equal(t, "before", clone.Title)
	assert.Equal(t, 3, clone.Active())
	assert.Equal(t, annotation.Drawing, clone.Layer(3).State())
	assert.Empty(t, clone.Layer(0).Strokes())
}

func TestZoneJSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(rotation.Player{ID: "a", Label: "S", X: 1, Y: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","label":"S","name":"","x":1,"y":2}`, string(out))

	out, err = json.Marshal(rotation.Player{ID: "a", Zone: rotation.ZoneOf(5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","label":"","name":"","x":0,"y":0,"zone":5}`, string(out))

	testCases := []struct {
		description string
		body        string
		zone        rotation.Zone
		fails       bool
	}{
		{"number", `{"zone":3}`, rotation.ZoneOf(3), false},
		{"null", `{"zone":null}`, rotation.NoZone, false},
		{"missing", `{}`, rotation.NoZone, false},
		{"out of range", `{"zone":9}`, rotation.NoZone, true},
		{"string", `{"zone":"3"}`, rotation.NoZone, true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var p rotation.Player
			err := json.Unmarshal([]byte(tc.body), &p)
			if tc.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.zone, p.Zone)
		})
	}
}
