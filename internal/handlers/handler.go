// Package handlers implements the resource-type handler contract: one
// concrete type per supported kind (ECS service, RDS instance, Aurora
// cluster, EC2 autoscaling group), each satisfying the Handler interface.
package handlers

import (
	"context"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// Handler is the capability set every resource-type implementation
// satisfies: read current status, drive a start or stop transition, and
// report whether the resource has settled into its target state.
type Handler interface {
	// GetStatus returns a cloud-API-shaped snapshot of current state,
	// used as HandlerResult.PreviousState for the "status" action and for
	// dry-run start/stop. A real start/stop builds its own PreviousState.
	GetStatus(ctx context.Context) (map[string]any, error)

	// Start drives the resource toward its configured "start" target.
	// Never returns an error for expected cloud conditions — those are
	// reported through the returned HandlerResult.
	Start(ctx context.Context) model.HandlerResult

	// Stop drives the resource toward its configured "stop" target.
	Stop(ctx context.Context) model.HandlerResult

	// IsReady reports whether the resource has settled into the state
	// implied by its most recent start/stop target.
	IsReady(ctx context.Context) (bool, error)
}

// resultBase fills in the fields every HandlerResult shares, so each
// handler only needs to supply the outcome-specific bits.
func resultBase(action string, resource model.DiscoveredResource) model.HandlerResult {
	return model.HandlerResult{
		Action:       action,
		ResourceType: resource.ResourceType,
		ResourceID:   resource.ResourceID,
		Region:       resource.Region,
	}
}

// failure builds a HandlerResult per the uniform failure-reporting rule in
// spec.md §4.3: "<Op> operation failed" plus the underlying error message.
func failure(action string, resource model.DiscoveredResource, op string, err error) model.HandlerResult {
	r := resultBase(action, resource)
	r.Success = false
	r.Message = op + " operation failed"
	r.Error = err.Error()
	return r
}

// refusal builds a HandlerResult for a state-gate refusal: the resource is
// in a transient state the API would reject, so no mutation is attempted.
func refusal(action string, resource model.DiscoveredResource, observedState string) model.HandlerResult {
	r := resultBase(action, resource)
	r.Success = false
	r.Message = "refusing to act: resource is in state " + observedState
	return r
}

// idempotent builds a HandlerResult for a no-op because the resource was
// already in the target state.
func idempotent(action string, resource model.DiscoveredResource, message string) model.HandlerResult {
	r := resultBase(action, resource)
	r.Success = true
	r.Idempotent = true
	r.Message = message
	return r
}

// success builds a HandlerResult for a completed mutation.
func success(action string, resource model.DiscoveredResource, message string) model.HandlerResult {
	r := resultBase(action, resource)
	r.Success = true
	r.Message = message
	return r
}
