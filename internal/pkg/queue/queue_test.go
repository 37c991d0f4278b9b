package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, Message{Type: "lecture.transcribe", Body: []byte("id-1")}))
	require.NoError(t, q.Publish(ctx, Message{Type: "lecture.transcribe", Body: []byte("id-2")}))
	assert.Equal(t, 2, q.Len())

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	for _, want := range []string{"id-1", "id-2"} {
		select {
		case msg := <-msgs:
			assert.Equal(t, "lecture.transcribe", msg.Type)
			assert.Equal(t, want, string(msg.Body))
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestInMemoryPublishFull(t *testing.T) {
	q := NewInMemory(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: "a"}))
	assert.ErrorIs(t, q.Publish(context.Background(), Message{Type: "b"}), ErrQueueFull)
}
