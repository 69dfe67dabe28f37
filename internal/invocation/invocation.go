// Package invocation defines the payload and response envelopes exchanged
// with the surrounding invocation shell, and the engine entrypoint that
// fills them in from one Orchestrator run — spec.md §6.
package invocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vs-yuri-tsai/lights-out/internal/config"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
	"github.com/vs-yuri-tsai/lights-out/internal/orchestrator"
)

// Payload is the invocation request, unpacked by the surrounding shell.
type Payload struct {
	Action        string `json:"action"`
	TargetGroup   string `json:"targetGroup,omitempty"`
	DryRun        bool   `json:"dryRun,omitempty"`
	TriggerSource string `json:"triggerSource,omitempty"`
}

// Response is the invocation response for the start/stop/status actions.
type Response struct {
	Action    string               `json:"action"`
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Results   []model.HandlerResult `json:"results"`
	Timestamp time.Time            `json:"timestamp"`
	RequestID string               `json:"request_id"`
}

// DiscoverResource is the trimmed resource projection returned by the
// discover action, per spec.md §6.
type DiscoverResource struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	ARN          string `json:"arn"`
	Priority     int    `json:"priority"`
	Group        string `json:"group"`
}

// DiscoverResponse is the invocation response shape for the "discover"
// action.
type DiscoverResponse struct {
	Action          string             `json:"action"`
	DiscoveredCount int                `json:"discovered_count"`
	Resources       []DiscoverResource `json:"resources"`
	Timestamp       time.Time          `json:"timestamp"`
	RequestID       string             `json:"request_id"`
}

// Engine ties the config loader and orchestrator together behind the
// single entrypoint the Lambda handler and the local-invoke CLI both call.
type Engine struct {
	Loader       *config.Loader
	Orchestrator *orchestrator.Orchestrator
	ConfigName   string

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// Invoke runs one invocation end to end: load config, dispatch to
// Orchestrator.Discover or Orchestrator.Execute depending on action, and
// shape the result into the appropriate response envelope. Returned values
// are `*Response` or `*DiscoverResponse`, whichever matches action. When
// payload.DryRun is set, start and stop actions run through
// Orchestrator.ExecuteDryRun instead, which reads status without issuing
// any mutating call.
func (e *Engine) Invoke(ctx context.Context, requestID string, payload Payload) (any, error) {
	now := e.Now
	if now == nil {
		now = time.Now
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	action := model.Action(payload.Action)
	switch action {
	case model.ActionStart, model.ActionStop, model.ActionStatus, model.ActionDiscover:
	default:
		return &Response{
			Action:    payload.Action,
			Total:     1,
			Succeeded: 0,
			Failed:    1,
			Results: []model.HandlerResult{{
				Success: false,
				Action:  payload.Action,
				Message: fmt.Sprintf("unrecognized action %q", payload.Action),
				Error:   model.ErrInvalidAction,
			}},
			Timestamp: now(),
			RequestID: requestID,
		}, nil
	}

	cfg, err := e.Loader.Load(ctx, e.ConfigName)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("action", payload.Action).
		Str("target_group", payload.TargetGroup).
		Str("request_id", requestID).
		Bool("dry_run", payload.DryRun).
		Msg("invocation starting")

	if action == model.ActionDiscover {
		resources, err := e.Orchestrator.Discover(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out := make([]DiscoverResource, 0, len(resources))
		for _, r := range resources {
			out = append(out, DiscoverResource{
				ResourceType: r.ResourceType,
				ResourceID:   r.ResourceID,
				ARN:          r.ARN,
				Priority:     r.Priority,
				Group:        r.Group,
			})
		}
		return &DiscoverResponse{
			Action:          string(action),
			DiscoveredCount: len(out),
			Resources:       out,
			Timestamp:       now(),
			RequestID:       requestID,
		}, nil
	}

	var result *model.OrchestrationResult
	if payload.DryRun {
		result, err = e.Orchestrator.ExecuteDryRun(ctx, cfg, action, payload.TargetGroup, payload.TriggerSource)
	} else {
		result, err = e.Orchestrator.Execute(ctx, cfg, action, payload.TargetGroup, payload.TriggerSource)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("action", payload.Action).
		Str("request_id", requestID).
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("invocation completed")

	return &Response{
		Action:    string(action),
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Results:   result.Results,
		Timestamp: now(),
		RequestID: requestID,
	}, nil
}
