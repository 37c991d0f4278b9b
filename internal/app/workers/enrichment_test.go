package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schoolportal/internal/app/services"
	"github.com/yigit/schoolportal/internal/pkg/queue"
)

type recordingEnrichment struct {
	mu   sync.Mutex
	ids  []string
	done chan struct{}
	fail bool
}

func (r *recordingEnrichment) Process(_ context.Context, id string) error {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	r.done <- struct{}{}
	if r.fail {
		return errors.New("boom")
	}
	return nil
}

func TestWorkerProcessesTranscribeJobs(t *testing.T) {
	q := queue.NewInMemory(8)
	rec := &recordingEnrichment{done: make(chan struct{}, 8), fail: true}
	w := NewEnrichmentWorker(q, rec, 2, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.NoError(t, q.Publish(ctx, queue.Message{Type: "other", Body: []byte("skip")}))
	require.NoError(t, q.Publish(ctx, queue.Message{Type: services.TranscribeJobType, Body: []byte("a")}))
	require.NoError(t, q.Publish(ctx, queue.Message{Type: services.TranscribeJobType, Body: []byte("b")}))

	for i := 0; i < 2; i++ {
		select {
		case <-rec.done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, rec.ids)
}

func TestNewEnrichmentWorkerMinimumConcurrency(t *testing.T) {
	w := NewEnrichmentWorker(queue.NewInMemory(1), &recordingEnrichment{}, 0, zerolog.Nop())
	assert.Equal(t, 1, w.concurrency)
}
