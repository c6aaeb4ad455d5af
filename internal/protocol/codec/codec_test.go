package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cryborg/sugoroku/internal/protocol"
)

type snapshotStub struct {
	SessionID string   `json:"session_id"`
	Turn      int      `json:"turn"`
	Cost      *int     `json:"cost,omitempty"`
	Names     []string `json:"names"`
	Finished  bool     `json:"finished"`
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	cost := 4
	in := snapshotStub{SessionID: "abc", Turn: 7, Cost: &cost, Names: []string{"Ann", "Ben"}}

	for _, f := range []Format{FormatJSON, FormatBinary} {
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()

			msg := MustNewMessage(protocol.MsgSnapshot, in)
			data, err := Encode(msg, f)
			require.NoError(t, err)

			out, err := Decode(data, f)
			require.NoError(t, err)
			defer PutMessage(out)
			assert.Equal(t, protocol.MsgSnapshot, out.Type)

			got, err := ParsePayload[snapshotStub](out)
			require.NoError(t, err)
			assert.Equal(t, in, *got)
		})
	}
}

func TestEncode_JSONIsPlainText(t *testing.T) {
	t.Parallel()

	data, err := Encode(MustNewMessage(protocol.MsgPong, protocol.PongPayload{ClientTimestamp: 1, ServerTimestamp: 2}), FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong","payload":{"client_timestamp":1,"server_timestamp":2}}`, string(data))
}

func TestEncodeDecode_NoPayload(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatJSON, FormatBinary} {
		msg, err := NewMessage(protocol.MsgGetSnapshot, nil)
		require.NoError(t, err)
		data, err := Encode(msg, f)
		require.NoError(t, err)

		out, err := Decode(data, f)
		require.NoError(t, err)
		assert.Equal(t, protocol.MsgGetSnapshot, out.Type)
		assert.Empty(t, out.Payload)

		ping, err := ParsePayload[protocol.PingPayload](out)
		require.NoError(t, err)
		assert.Zero(t, ping.Timestamp)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		f    Format
	}{
		{"json garbage", []byte("{not json"), FormatJSON},
		{"json without type", []byte(`{"payload":{}}`), FormatJSON},
		{"binary garbage", []byte{0xff, 0xff, 0xff}, FormatBinary},
		{"binary without type", nil, FormatBinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.f)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeRateLimit)
	assert.Equal(t, protocol.MsgError, msg.Type)

	var p protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	assert.Equal(t, protocol.ErrCodeRateLimit, p.Code)
	assert.Equal(t, "too many requests", p.Message)
}

func TestNewMessage_Unmarshalable(t *testing.T) {
	t.Parallel()

	_, err := NewMessage(protocol.MsgSnapshot, make(chan int))
	require.Error(t, err)
	assert.Panics(t, func() { MustNewMessage(protocol.MsgSnapshot, func() {}) })
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatBinary, ParseFormat("binary"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat(""))
}

func TestParsePayload_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParsePayload[protocol.PingPayload](&protocol.Message{Type: protocol.MsgPing, Payload: []byte(`{"timestamp":"x"}`)})
	assert.Error(t, err)
}
