package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type flakyHandler struct {
	failures int
	calls    int
	panics   bool
	gotJobID string
}

func (h *flakyHandler) Topic() string { return "analysis.requests" }

func (h *flakyHandler) Handle(ctx context.Context, _ []byte) error {
	h.calls++
	h.gotJobID = JobIDFrom(ctx)
	if h.panics {
		panic("bad payload")
	}
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestConsumer(t *testing.T, dlq string) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(2, time.Millisecond, 2*time.Millisecond),
		WithConsumerDLQ(dlq),
	)
	require.NoError(t, err)
	return c
}

func requestMessage() kafka.Message {
	return kafka.Message{
		Topic:   "analysis.requests",
		Value:   []byte(`{"target_bps":2}`),
		Headers: []kafka.Header{{Key: JobIDHeader, Value: []byte("job-1")}},
	}
}

func TestConsumerRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, "")
	c.WithConsumerHook(NewHookChain(JobIDHook()))
	h := &flakyHandler{failures: 2}
	c.RegisterHandler(h)

	assert.True(t, c.process(context.Background(), requestMessage()))
	assert.Equal(t, 3, h.calls)
	assert.Equal(t, "job-1", h.gotJobID)
}

func TestConsumerWithoutDLQKeepsOffset(t *testing.T) {
	c := newTestConsumer(t, "")
	h := &flakyHandler{failures: 10}
	c.RegisterHandler(h)

	assert.False(t, c.process(context.Background(), requestMessage()))
	assert.Equal(t, 3, h.calls)
}

func TestConsumerDeadLetters(t *testing.T) {
	c := newTestConsumer(t, "analysis.dlq")
	w := &fakeWriter{}
	c.dlq = w
	c.RegisterHandler(&flakyHandler{failures: 10})

	assert.True(t, c.process(context.Background(), requestMessage()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "analysis.dlq", w.msgs[0].Topic)
	assert.Equal(t, "analysis.requests", HeaderValue(w.msgs[0], "source_topic"))
	assert.Equal(t, "job-1", HeaderValue(w.msgs[0], JobIDHeader))

	w.err = errors.New("broker down")
	assert.False(t, c.process(context.Background(), requestMessage()))
}

func TestConsumerRecoversPanics(t *testing.T) {
	c := newTestConsumer(t, "analysis.dlq")
	w := &fakeWriter{}
	c.dlq = w
	c.RegisterHandler(&flakyHandler{panics: true})

	assert.True(t, c.process(context.Background(), requestMessage()))
	require.Len(t, w.msgs, 1)
	assert.Contains(t, HeaderValue(w.msgs[0], "error"), "bad payload")
}

func TestHookChainStopsOnError(t *testing.T) {
	var after []string
	chain := NewHookChain(
		HookFuncs{After: func(context.Context, string, kafka.Message, []byte, error) { after = append(after, "first") }},
		HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				panic("boom")
			},
			After: func(context.Context, string, kafka.Message, []byte, error) { after = append(after, "second") },
		},
	)
	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	require.Error(t, err)

	chain.AfterHandle(context.Background(), "t", kafka.Message{}, nil, nil)
	assert.Equal(t, []string{"second", "first"}, after)
}

func TestProducerPublishMessage(t *testing.T) {
	initProducerMetrics()
	w := &fakeWriter{}
	p := &Producer{writer: w}

	require.NoError(t, p.PublishMessage(context.Background(), "analysis.results", map[string]int{"n": 1}))
	require.Len(t, w.msgs, 1)
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))
	assert.Nil(t, w.msgs[0].Key)

	w.err = errors.New("down")
	assert.Error(t, p.Publish(context.Background(), "t", []byte("k"), "raw"))
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.LessOrEqual(t, d, 80*time.Millisecond)
		assert.Greater(t, d, time.Duration(0))
	}
}
