package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidsearch/notice/internal/apperror"
	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/genai"
	"github.com/corvidsearch/notice/internal/instant"
	"github.com/corvidsearch/notice/internal/store"
)

type fakeDiscoverer struct {
	urls []string
	err  error
}

func (f *fakeDiscoverer) FindURLs(_ context.Context, _ string) ([]string, error) {
	return f.urls, f.err
}

type recordingQueue struct {
	enqueued chan *store.QueueEntry
}

func newRecordingQueue() *recordingQueue {
	return &recordingQueue{enqueued: make(chan *store.QueueEntry, 16)}
}

func (r *recordingQueue) Enqueue(_ context.Context, url string, priority int, submitter string) (*store.QueueEntry, error) {
	entry := &store.QueueEntry{
		ID:          fmt.Sprintf("entry-%d", len(r.enqueued)+1),
		URL:         url,
		Status:      store.QueueStatusPending,
		Priority:    priority,
		SubmittedBy: submitter,
	}
	r.enqueued <- entry

	return entry, nil
}

type erroringIndex struct{}

func (erroringIndex) Configure(context.Context) error                        { return nil }
func (erroringIndex) AddDocuments(context.Context, []fts.IndexPayload) error { return nil }
func (erroringIndex) DeleteDocument(context.Context, string) error           { return nil }
func (erroringIndex) Count(context.Context) (int64, error)                   { return 0, nil }

func (erroringIndex) Search(context.Context, string, int, int) ([]fts.SearchHit, int64, error) {
	return nil, 0, errors.New("index unreachable")
}

func newTestPipeline(index fts.FullTextIndex, discover Discoverer, queue Enqueuer) *Pipeline {
	logger := zerolog.Nop()

	return New(index, genai.New("anthropic", "mock", ""), nil, discover, queue, &logger)
}

func seedIndex(t *testing.T, index fts.FullTextIndex, n int) {
	t.Helper()

	docs := make([]fts.IndexPayload, 0, n)

	for i := 0; i < n; i++ {
		docs = append(docs, fts.IndexPayload{
			ID:           fmt.Sprintf("doc-%d", i),
			URL:          fmt.Sprintf("https://example.com/go-%d", i),
			Domain:       "example.com",
			Title:        "Go concurrency patterns",
			RawText:      "Goroutines and channels make concurrent programming tractable.",
			Status:       store.StatusIndexed,
			QualityScore: 1.0,
		})
	}

	require.NoError(t, index.AddDocuments(context.Background(), docs))
}

func TestRunRejectsEmptyQuery(t *testing.T) {
	p := newTestPipeline(fts.NewMemory(), nil, nil)

	_, err := p.Run(context.Background(), Request{Query: "   "})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRunMathInstantAnswer(t *testing.T) {
	p := newTestPipeline(fts.NewMemory(), nil, nil)

	resp, err := p.Run(context.Background(), Request{Query: "what is 150 times 6 plus 7"})
	require.NoError(t, err)
	require.NotNil(t, resp.InstantAnswer)

	assert.Equal(t, instant.KindCalculation, resp.InstantAnswer.Kind)
	assert.Equal(t, "907", resp.InstantAnswer.Value)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.AIAnswer)
}

func TestRunUnitConversionInstantAnswer(t *testing.T) {
	p := newTestPipeline(fts.NewMemory(), nil, nil)

	resp, err := p.Run(context.Background(), Request{Query: "5 km to mi"})
	require.NoError(t, err)
	require.NotNil(t, resp.InstantAnswer)

	assert.Equal(t, instant.KindUnitConversion, resp.InstantAnswer.Kind)
	assert.Equal(t, "3.10686", resp.InstantAnswer.Value)
}

func TestRunTimerInstantAnswer(t *testing.T) {
	p := newTestPipeline(fts.NewMemory(), nil, nil)

	resp, err := p.Run(context.Background(), Request{Query: "timer"})
	require.NoError(t, err)
	require.NotNil(t, resp.InstantAnswer)

	assert.Equal(t, instant.KindTimer, resp.InstantAnswer.Kind)
	assert.Equal(t, "300", resp.InstantAnswer.Value)
}

func TestRunColdQueryTriggersDiscovery(t *testing.T) {
	queue := newRecordingQueue()
	discover := &fakeDiscoverer{urls: []string{"https://found.example.com/a", "https://found.example.com/b"}}
	p := newTestPipeline(fts.NewMemory(), discover, queue)

	resp, err := p.Run(context.Background(), Request{Query: "obscure topic"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Total)

	// Discovery runs in the background; the response must not wait
	// for it, but the enqueues should land shortly after.
	for i := 0; i < 2; i++ {
		select {
		case entry := <-queue.enqueued:
			assert.Equal(t, store.PriorityDiscovery, entry.Priority)
		case <-time.After(2 * time.Second):
			t.Fatal("discovered URL was not enqueued in time")
		}
	}
}

func TestRunWarmQuerySkipsDiscovery(t *testing.T) {
	index := fts.NewMemory()
	seedIndex(t, index, 5)

	queue := newRecordingQueue()
	p := newTestPipeline(index, &fakeDiscoverer{urls: []string{"https://found.example.com/a"}}, queue)

	resp, err := p.Run(context.Background(), Request{Query: "goroutines"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(resp.Results), 3)
	assert.NotEmpty(t, resp.AIAnswer)

	select {
	case entry := <-queue.enqueued:
		t.Fatalf("unexpected discovery enqueue for %s", entry.URL)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRunIndexFailureDegradesToEmpty(t *testing.T) {
	p := newTestPipeline(erroringIndex{}, nil, nil)

	resp, err := p.Run(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Total)
	assert.Empty(t, resp.AIAnswer)
}

func TestRunLimitClamping(t *testing.T) {
	index := fts.NewMemory()
	seedIndex(t, index, 5)

	p := newTestPipeline(index, nil, nil)

	resp, err := p.Run(context.Background(), Request{Query: "goroutines", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, int64(5), resp.Total)

	resp, err = p.Run(context.Background(), Request{Query: "goroutines", Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 5)
}
