package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vs-yuri-tsai/lights-out/internal/discovery"
	"github.com/vs-yuri-tsai/lights-out/internal/handlers"
	"github.com/vs-yuri-tsai/lights-out/internal/logging"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// maxConcurrentOperations bounds how many handler operations the parallel
// and grouped-parallel strategies run at once, per spec.md §5's "bounded
// set of concurrent handler operations".
const maxConcurrentOperations = 20

// Discoverer is the narrow surface of discovery.Service the orchestrator
// depends on.
type Discoverer interface {
	Discover(ctx context.Context, filter discovery.Filter) ([]model.DiscoveredResource, error)
}

// HandlerFactory builds the Handler for one discovered resource. It
// returns (nil, nil) for a resourceType outside the closed set, per
// spec.md §4.3.5 — the orchestrator turns that into a per-resource
// HANDLER_NOT_FOUND failure rather than aborting.
type HandlerFactory func(resource model.DiscoveredResource) (handlers.Handler, error)

// Orchestrator wires discovery, the handler factory, and the scheduler
// into the algorithm described in spec.md §4.5.
type Orchestrator struct {
	discoverer Discoverer
	newHandler HandlerFactory
}

// New returns an Orchestrator.
func New(discoverer Discoverer, newHandler HandlerFactory) *Orchestrator {
	return &Orchestrator{discoverer: discoverer, newHandler: newHandler}
}

// Discover runs discovery.tags/resource_types/regions from cfg and returns
// the flat resource list, for the "discover" action — spec.md §4.5 step 1.
func (o *Orchestrator) Discover(ctx context.Context, cfg *model.Config) ([]model.DiscoveredResource, error) {
	return o.discoverer.Discover(ctx, discovery.Filter{
		TagFilters:    cfg.Discovery.Tags,
		ResourceTypes: cfg.Discovery.ResourceTypes,
		Regions:       cfg.Regions,
	})
}

// Execute runs discovery, filters and sorts the result, and drives each
// resource through the requested action, aggregating a single
// OrchestrationResult. action must be start, stop, or status.
func (o *Orchestrator) Execute(ctx context.Context, cfg *model.Config, action model.Action, targetGroup, triggerSource string) (*model.OrchestrationResult, error) {
	return o.execute(ctx, cfg, action, targetGroup, triggerSource, false)
}

// ExecuteDryRun runs the same algorithm as Execute but never calls a
// handler's Start or Stop: it substitutes GetStatus so the response
// describes what would be acted on without mutating anything, per the
// invocation payload's dryRun field (spec.md §6).
func (o *Orchestrator) ExecuteDryRun(ctx context.Context, cfg *model.Config, action model.Action, targetGroup, triggerSource string) (*model.OrchestrationResult, error) {
	return o.execute(ctx, cfg, action, targetGroup, triggerSource, true)
}

func (o *Orchestrator) execute(ctx context.Context, cfg *model.Config, action model.Action, targetGroup, triggerSource string, dryRun bool) (*model.OrchestrationResult, error) {
	resources, err := o.Discover(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if targetGroup != "" {
		filtered := resources[:0:0]
		for _, r := range resources {
			if r.Group == targetGroup {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	ordered := sortResources(resources, action)
	strategy := cfg.EffectiveStrategy()

	result := &model.OrchestrationResult{}
	var mu sync.Mutex
	record := func(r model.HandlerResult) {
		r.TriggerSource = triggerSource
		if !r.Success {
			logging.ForResource(string(action), r.ResourceID).Error().
				Str("error", r.Error).
				Msg(r.Message)
		}
		mu.Lock()
		result.Add(r)
		mu.Unlock()
	}

	dispatch := func(resource model.DiscoveredResource) model.HandlerResult {
		return o.dispatch(ctx, resource, action, dryRun)
	}

	switch strategy {
	case model.StrategySequential:
		for _, r := range ordered {
			record(dispatch(r))
		}
	case model.StrategyParallel:
		runConcurrent(ordered, dispatch, record)
	default: // grouped-parallel
		for _, group := range groupByPriority(ordered) {
			runConcurrent(group.resources, dispatch, record)
		}
	}

	return result, nil
}

// runConcurrent runs dispatch over resources with bounded concurrency and
// blocks until every result has been recorded — the group barrier
// required by spec.md §4.4/§5.
func runConcurrent(resources []model.DiscoveredResource, dispatch func(model.DiscoveredResource) model.HandlerResult, record func(model.HandlerResult)) {
	sem := make(chan struct{}, maxConcurrentOperations)
	var wg sync.WaitGroup
	for _, r := range resources {
		wg.Add(1)
		sem <- struct{}{}
		go func(resource model.DiscoveredResource) {
			defer wg.Done()
			defer func() { <-sem }()
			record(dispatch(resource))
		}(r)
	}
	wg.Wait()
}

// dispatch requests a handler for resource and invokes the operation for
// action, converting any panic-free error path into a HandlerResult per
// the fail-fast-is-false rule (spec.md §4.5 step 5).
func (o *Orchestrator) dispatch(ctx context.Context, resource model.DiscoveredResource, action model.Action, dryRun bool) (result model.HandlerResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("resource_id", resource.ResourceID).
				Str("action", string(action)).
				Interface("panic", rec).
				Msg("handler operation panicked")
			result = model.HandlerResult{
				Success:      false,
				Action:       string(action),
				ResourceType: resource.ResourceType,
				ResourceID:   resource.ResourceID,
				Region:       resource.Region,
				Message:      "operation failed",
				Error:        "internal handler error",
			}
		}
	}()

	handler, err := o.newHandler(resource)
	if err != nil {
		return model.HandlerResult{
			Success:      false,
			Action:       string(action),
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			Region:       resource.Region,
			Message:      "failed to construct handler",
			Error:        err.Error(),
		}
	}
	if handler == nil {
		log.Warn().
			Str("resource_id", resource.ResourceID).
			Str("resource_type", resource.ResourceType).
			Msg("no handler registered for resource type")
		return model.HandlerResult{
			Success:      false,
			Action:       string(action),
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			Region:       resource.Region,
			Message:      "no handler registered for resource type",
			Error:        model.ErrHandlerNotFound,
		}
	}

	if dryRun && (action == model.ActionStart || action == model.ActionStop) {
		status, err := handler.GetStatus(ctx)
		if err != nil {
			return model.HandlerResult{
				Success:      false,
				Action:       string(action),
				ResourceType: resource.ResourceType,
				ResourceID:   resource.ResourceID,
				Region:       resource.Region,
				Message:      "dry run: GetStatus operation failed",
				Error:        err.Error(),
			}
		}
		return model.HandlerResult{
			Success:       true,
			Action:        string(action),
			ResourceType:  resource.ResourceType,
			ResourceID:    resource.ResourceID,
			Region:        resource.Region,
			Message:       fmt.Sprintf("dry run: would %s, no mutating call made", action),
			PreviousState: status,
			Idempotent:    true,
		}
	}

	switch action {
	case model.ActionStart:
		return handler.Start(ctx)
	case model.ActionStop:
		return handler.Stop(ctx)
	case model.ActionStatus:
		status, err := handler.GetStatus(ctx)
		if err != nil {
			return model.HandlerResult{
				Success:      false,
				Action:       string(action),
				ResourceType: resource.ResourceType,
				ResourceID:   resource.ResourceID,
				Region:       resource.Region,
				Message:      "GetStatus operation failed",
				Error:        err.Error(),
			}
		}
		return model.HandlerResult{
			Success:       true,
			Action:        string(action),
			ResourceType:  resource.ResourceType,
			ResourceID:    resource.ResourceID,
			Region:        resource.Region,
			Message:       "status retrieved",
			PreviousState: status,
		}
	default:
		// Unreachable from any real caller: invocation.Engine.Invoke rejects
		// an unrecognized action before Execute/ExecuteDryRun ever runs.
		// Kept as a defensive fallback so dispatch never panics on an
		// Orchestrator used directly by a future caller that skips that
		// validation.
		return model.HandlerResult{
			Success:      false,
			Action:       string(action),
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			Region:       resource.Region,
			Message:      "unsupported action",
			Error:        model.ErrInvalidAction,
		}
	}
}
