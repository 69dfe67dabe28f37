// Package model defines the uniform value types shared by discovery, the
// resource-type handlers, and the orchestrator.
package model

// DiscoveredResource is the uniform record the orchestrator consumes,
// regardless of which cloud API produced it.
type DiscoveredResource struct {
	// ResourceType is a tag drawn from a closed set: "ecs-service",
	// "rds-db", "rds-cluster", "autoscaling-group", and "ec2-instance"
	// (recognised by discovery, but no handler drives it).
	ResourceType string `json:"resource_type"`

	// ARN is the canonical cloud identifier and the source of truth for
	// region (segment 3) and the resource's sub-identifier.
	ARN string `json:"arn"`

	// ResourceID is a human-readable key derived from the ARN, e.g.
	// "<cluster>/<service>" for ECS or the instance id for RDS.
	ResourceID string `json:"resource_id"`

	// Region is derived once at discovery time from ARN segment 3.
	Region string `json:"region"`

	// Priority is non-negative; lower runs earlier on start, later on stop.
	Priority int `json:"priority"`

	// Group correlates this resource to a region-group schedule.
	Group string `json:"group"`

	// Tags is the full tag set returned by discovery, key -> value.
	Tags map[string]string `json:"tags,omitempty"`

	// Metadata is an open bag for handler/discovery-specific extras, e.g.
	// metadata["cluster_name"] for ECS services.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DefaultPriority is used when the "lights-out:priority" tag is absent,
// fails to parse as an integer, or is negative.
const DefaultPriority = 50

// DefaultGroup is used when the "lights-out:group" tag is absent.
const DefaultGroup = "default"

// Tag keys the engine reads off managed resources.
const (
	TagPriority = "lights-out:priority"
	TagGroup    = "lights-out:group"
)

// Action is the operation requested for one invocation.
type Action string

const (
	ActionStart    Action = "start"
	ActionStop     Action = "stop"
	ActionStatus   Action = "status"
	ActionDiscover Action = "discover"
)

// Reserved error tags attached to HandlerResult.Error.
const (
	ErrHandlerNotFound = "HANDLER_NOT_FOUND"
	ErrInvalidAction   = "INVALID_ACTION"
)

// HandlerResult is the uniform outcome of one operation on one resource.
type HandlerResult struct {
	Success       bool           `json:"success"`
	Action        string         `json:"action"`
	ResourceType  string         `json:"resource_type"`
	ResourceID    string         `json:"resource_id"`
	Message       string         `json:"message"`
	PreviousState map[string]any `json:"previous_state,omitempty"`
	Idempotent    bool           `json:"idempotent"`
	Error         string         `json:"error,omitempty"`
	TriggerSource string         `json:"trigger_source,omitempty"`
	Region        string         `json:"region,omitempty"`
}

// OrchestrationResult is the aggregated outcome of one invocation.
type OrchestrationResult struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []HandlerResult `json:"results"`
}

// Add appends a result and keeps the succeeded/failed/total tallies in sync.
func (o *OrchestrationResult) Add(r HandlerResult) {
	o.Results = append(o.Results, r)
	o.Total++
	if r.Success {
		o.Succeeded++
	} else {
		o.Failed++
	}
}
