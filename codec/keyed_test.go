package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mattfehr/volleyball-rotation-tracker/annotation"
	"github.com/mattfehr/volleyball-rotation-tracker/codec"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	t.Parallel()
	for i := 0; i < rotation.SlotCount; i++ {
		label, ok := codec.LabelFor(i)
		require.True(t, ok)
		idx, ok := codec.IndexOf(label)
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}
	_, ok := codec.LabelFor(6)
	assert.False(t, ok)
	_, ok = codec.IndexOf("R7")
	assert.False(t, ok)
}

func TestKeyedRoundTrip(t *testing.T) {
	t.Parallel()
	doc := codec.Export(sampleSet(t))

	keyed := codec.ToKeyed(doc)
	assert.Len(t, keyed.Players, 6)
	assert.Equal(t, doc.Rotations[1], keyed.Players["R2"])
	assert.Equal(t, doc.Annotations[0], keyed.Annotations["R1"])

	back, err := codec.FromKeyed(keyed)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, back, zoneCmp); diff != "" {
		t.Errorf("keyed round trip mismatch (-want +got):\n%s", diff)
	}

	again := codec.ToKeyed(back)
	if diff := cmp.Diff(keyed, again, zoneCmp); diff != "" {
		t.Errorf("flat round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyedJSONShape(t *testing.T) {
	t.Parallel()
	keyed := codec.ToKeyed(codec.Export(rotation.NewSet("shape")))

	data, err := json.Marshal(keyed)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"title": "shape",
		"players": {"R1":[],"R2":[],"R3":[],"R4":[],"R5":[],"R6":[]},
		"annotations": {"R1":[],"R2":[],"R3":[],"R4":[],"R5":[],"R6":[]}
	}`, string(data))
}

func TestFromKeyedRejectsBadLabels(t *testing.T) {
	t.Parallel()
	good := codec.ToKeyed(codec.Export(rotation.NewSet("labels")))

	missing := codec.ToKeyed(codec.Export(rotation.NewSet("labels")))
	delete(missing.Players, "R4")

	extra := codec.ToKeyed(codec.Export(rotation.NewSet("labels")))
	extra.Annotations["R7"] = []annotation.Stroke{}

	renamed := codec.ToKeyed(codec.Export(rotation.NewSet("labels")))
	delete(renamed.Players, "R1")
	renamed.Players["0"] = []rotation.Player{}

	for name, kdoc := range map[string]codec.KeyedDocument{"missing": missing, "extra": extra, "renamed": renamed} {
		_, err := codec.FromKeyed(kdoc)
		assert.ErrorIs(t, err, codec.ErrInvalidShape, name)
	}

	_, err := codec.FromKeyed(good)
	assert.NoError(t, err)
}
