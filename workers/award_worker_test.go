package workers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEnqueueDropsWhenFull(t *testing.T) {
	w := NewAwardWorker(nil, 2, zap.NewNop())

	assert.True(t, w.Enqueue(Trigger{Kind: TriggerProphecyCreated, UserID: "a"}))
	assert.True(t, w.Enqueue(Trigger{Kind: TriggerProphecyCreated, UserID: "b"}))
	assert.False(t, w.Enqueue(Trigger{Kind: TriggerProphecyCreated, UserID: "c"}),
		"a full queue drops instead of blocking")
}

func TestQueueSizeDefault(t *testing.T) {
	w := NewAwardWorker(nil, 0, zap.NewNop())
	assert.Equal(t, 256, cap(w.queue))
}
