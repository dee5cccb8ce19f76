package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/balrampariyarath/cedar-OS/events"
	"github.com/balrampariyarath/cedar-OS/messages"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingHook struct {
	mu     sync.Mutex
	chunks []string
	errs   []error
}

func (h *collectingHook) OnUserMessage(context.Context, messages.Message)      {}
func (h *collectingHook) OnAssistantMessage(context.Context, messages.Message) {}
func (h *collectingHook) OnActionExecuted(context.Context, string, string, []any) {
}

func (h *collectingHook) OnAssistantChunk(_ context.Context, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chunks = append(h.chunks, text)
}

func (h *collectingHook) OnError(_ context.Context, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *collectingHook) Chunks() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.chunks...)
}

func TestLocal_PublishReachesSubscriber(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := Local()
	topic := b.Topic(ctx, "session-1")

	hook := &collectingHook{}
	sub, err := topic.Subscribe(ctx, hook)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	sessionID := uuid.New()
	require.NoError(t, topic.Publish(ctx, events.AssistantChunk{SessionID: sessionID, Text: "hel"}))
	require.NoError(t, topic.Publish(ctx, events.AssistantChunk{SessionID: sessionID, Text: "lo"}))

	require.Eventually(t, func() bool {
		return len(hook.Chunks()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"hel", "lo"}, hook.Chunks())
}

func TestLocal_TopicIsSharedByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := Local()
	assert.Same(t, b.Topic(ctx, "a"), b.Topic(ctx, "a"))
	assert.NotSame(t, b.Topic(ctx, "a"), b.Topic(ctx, "b"))
}

func TestLocal_RequiresHook(t *testing.T) {
	t.Parallel()

	b := Local()
	_, err := b.Topic(context.Background(), "a").Subscribe(context.Background(), nil)
	assert.Error(t, err)
}

func TestLocal_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := Local()
	topic := b.Topic(ctx, "session-2")

	hook := &collectingHook{}
	sub, err := topic.Subscribe(ctx, hook)
	require.NoError(t, err)
	sub.Unsubscribe()
	sub.Unsubscribe() // second call stays safe

	require.NoError(t, topic.Publish(ctx, events.AssistantChunk{SessionID: uuid.New(), Text: "late"}))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, hook.Chunks())
}
