package editor_test

import (
	"testing"

	"github.com/mattfehr/volleyball-rotation-tracker/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()
	data, err := editor.Encode(editor.CmdSelect, editor.SelectPayload{Index: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"select","p":{"index":3}}`, string(data))

	env, err := editor.DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, editor.CmdSelect, env.T)

	p, err := editor.DecodePayload[editor.SelectPayload](env)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Index)
}

func TestEncodeWithoutPayload(t *testing.T) {
	t.Parallel()
	data, err := editor.Encode(editor.CmdNext, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"next"}`, string(data))

	_, err = editor.Encode("", nil)
	assert.Error(t, err)
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	t.Parallel()
	for _, body := range []string{``, `{`, `{"p":{}}`, `[]`} {
		_, err := editor.DecodeEnvelope([]byte(body))
		assert.Error(t, err, body)
	}

	_, err := editor.DecodePayload[editor.SelectPayload](editor.Envelope{T: editor.CmdSelect})
	assert.Error(t, err)
}
