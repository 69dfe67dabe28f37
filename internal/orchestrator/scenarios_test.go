package orchestrator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vs-yuri-tsai/lights-out/internal/handlers"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// TestScenario_EmptyDiscovery covers S1: zero discovered resources yields
// an all-zero result with an empty results slice, never a nil-pointer
// panic or a synthetic failure.
func TestScenario_EmptyDiscovery(t *testing.T) {
	o := New(&fakeDiscoverer{resources: nil}, func(model.DiscoveredResource) (handlers.Handler, error) {
		t.Fatal("no handler should be constructed for zero resources")
		return nil, nil
	})

	result, err := o.Execute(context.Background(), cfgWithStrategy(model.StrategySequential), model.ActionStop, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Results)
}

// TestScenario_PriorityOrderingOnStop covers S3: three resources at
// priorities [10,50,100] run in descending order [100,50,10] under
// sequential stop.
func TestScenario_PriorityOrderingOnStop(t *testing.T) {
	resources := []model.DiscoveredResource{
		{ResourceID: "p10", ResourceType: "rds-db", Priority: 10},
		{ResourceID: "p50", ResourceType: "rds-db", Priority: 50},
		{ResourceID: "p100", ResourceType: "rds-db", Priority: 100},
	}

	var mu sync.Mutex
	var order []string
	newHandler := func(resource model.DiscoveredResource) (handlers.Handler, error) {
		return &orderRecordingHandler{id: resource.ResourceID, order: &order, mu: &mu}, nil
	}

	o := New(&fakeDiscoverer{resources: resources}, newHandler)
	_, err := o.Execute(context.Background(), cfgWithStrategy(model.StrategySequential), model.ActionStop, "", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"p100", "p50", "p10"}, order)
}

// TestScenario_UnknownHandler covers S6: a resource type outside the
// closed set produces exactly one HANDLER_NOT_FOUND failure.
func TestScenario_UnknownHandler(t *testing.T) {
	resources := []model.DiscoveredResource{{ResourceID: "gw-1", ResourceType: "nat-gateway"}}
	o := New(&fakeDiscoverer{resources: resources}, func(model.DiscoveredResource) (handlers.Handler, error) {
		return nil, nil
	})

	result, err := o.Execute(context.Background(), cfgWithStrategy(model.StrategySequential), model.ActionStart, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 1)
	assert.False(t, result.Results[0].Success)
	assert.Equal(t, model.ErrHandlerNotFound, result.Results[0].Error)
}

type orderRecordingHandler struct {
	id    string
	order *[]string
	mu    *sync.Mutex
}

func (h *orderRecordingHandler) GetStatus(ctx context.Context) (map[string]any, error) { return nil, nil }

func (h *orderRecordingHandler) Start(ctx context.Context) model.HandlerResult {
	h.record()
	return model.HandlerResult{Success: true}
}

func (h *orderRecordingHandler) Stop(ctx context.Context) model.HandlerResult {
	h.record()
	return model.HandlerResult{Success: true}
}

func (h *orderRecordingHandler) IsReady(ctx context.Context) (bool, error) { return true, nil }

func (h *orderRecordingHandler) record() {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.order = append(*h.order, h.id)
}
