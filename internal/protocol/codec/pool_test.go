package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Cryborg/sugoroku/internal/protocol"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)
	msg.Type = protocol.MsgSnapshot
	msg.Payload = []byte(`{"turn":3}`)
	PutMessage(msg)

	// Get again - should be reset
	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Nil(t, msg2.Payload)
}

func TestStructPool_GetPut(t *testing.T) {
	t.Parallel()

	s := GetStruct()
	s.Fields = map[string]*structpb.Value{"type": structpb.NewStringValue("pong")}
	PutStruct(s)

	s2 := GetStruct()
	assert.Empty(t, s2.GetFields())
}

func TestPools_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
		PutStruct(nil)
		PutBuffer(nil)
	})
}

func TestBufferPool_GetPut(t *testing.T) {
	t.Parallel()

	buf := GetBuffer()
	assert.Equal(t, 0, buf.Len())
	buf.WriteString("test data")
	assert.Equal(t, 9, buf.Len())
	PutBuffer(buf)

	buf2 := GetBuffer()
	assert.Equal(t, 0, buf2.Len())
}

func TestPools_Concurrency(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			msg := GetMessage()
			msg.Type = "concurrent"
			PutMessage(msg)

			buf := GetBuffer()
			buf.WriteString("concurrent test")
			PutBuffer(buf)

			s := GetStruct()
			s.Fields = map[string]*structpb.Value{}
			PutStruct(s)
		})
	}
	wg.Wait()
}

func BenchmarkMessagePool_GetPut(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			msg := GetMessage()
			msg.Type = "benchmark"
			PutMessage(msg)
		}
	})
}
