package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// ASGClient is the narrow surface of autoscaling.Client the handler
// depends on.
type ASGClient interface {
	DescribeAutoScalingGroups(ctx context.Context, in *autoscaling.DescribeAutoScalingGroupsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error)
	UpdateAutoScalingGroup(ctx context.Context, in *autoscaling.UpdateAutoScalingGroupInput, optFns ...func(*autoscaling.Options)) (*autoscaling.UpdateAutoScalingGroupOutput, error)
	SuspendProcesses(ctx context.Context, in *autoscaling.SuspendProcessesInput, optFns ...func(*autoscaling.Options)) (*autoscaling.SuspendProcessesOutput, error)
	ResumeProcesses(ctx context.Context, in *autoscaling.ResumeProcessesInput, optFns ...func(*autoscaling.Options)) (*autoscaling.ResumeProcessesOutput, error)
}

const defaultASGWaitAfterCommand = 30

// defaultProcessesToSuspend is the implementation-provided standard set
// named by spec.md §4.3.4: the scaling-decision processes, leaving
// AddToLoadBalancer/HealthCheck untouched so instances can still drain.
var defaultProcessesToSuspend = []string{
	"Launch",
	"Terminate",
	"AlarmNotification",
	"ScheduledActions",
	"AZRebalance",
}

type asgSizes struct {
	MinSize         int32
	MaxSize         int32
	DesiredCapacity int32
}

type asgConfig struct {
	SuspendProcesses   bool
	ProcessesToSuspend []string
	WaitAfterCommand   int
	Start              asgSizes
	Stop               asgSizes
}

func decodeASGConfig(raw map[string]any) (asgConfig, error) {
	cfg := asgConfig{
		SuspendProcesses:   true,
		ProcessesToSuspend: defaultProcessesToSuspend,
		WaitAfterCommand:   defaultASGWaitAfterCommand,
	}
	if raw == nil {
		return asgConfig{}, fmt.Errorf("resource_defaults[\"autoscaling-group\"] is required")
	}

	if v, ok := raw["suspendProcesses"].(bool); ok {
		cfg.SuspendProcesses = v
	}
	if v, ok := raw["processesToSuspend"].([]any); ok {
		procs := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok {
				procs = append(procs, s)
			}
		}
		if len(procs) > 0 {
			cfg.ProcessesToSuspend = procs
		}
	}
	if v, ok := asInt(raw["waitAfterCommand"]); ok {
		cfg.WaitAfterCommand = v
	}

	startBlock, ok := raw["start"].(map[string]any)
	if !ok {
		return asgConfig{}, fmt.Errorf("resource_defaults[\"autoscaling-group\"].start is required")
	}
	start, err := decodeASGSizes(startBlock)
	if err != nil {
		return asgConfig{}, fmt.Errorf("start: %w", err)
	}
	cfg.Start = start

	stopBlock, ok := raw["stop"].(map[string]any)
	if !ok {
		return asgConfig{}, fmt.Errorf("resource_defaults[\"autoscaling-group\"].stop is required")
	}
	stop, err := decodeASGSizes(stopBlock)
	if err != nil {
		return asgConfig{}, fmt.Errorf("stop: %w", err)
	}
	cfg.Stop = stop

	return cfg, nil
}

func decodeASGSizes(block map[string]any) (asgSizes, error) {
	minSize, ok := asInt(block["minSize"])
	if !ok {
		return asgSizes{}, fmt.Errorf("minSize is required")
	}
	maxSize, ok := asInt(block["maxSize"])
	if !ok {
		return asgSizes{}, fmt.Errorf("maxSize is required")
	}
	desired, ok := asInt(block["desiredCapacity"])
	if !ok {
		return asgSizes{}, fmt.Errorf("desiredCapacity is required")
	}
	if !(0 <= minSize && minSize <= desired && desired <= maxSize) {
		return asgSizes{}, fmt.Errorf("invalid bounds: must satisfy 0 <= minSize(%d) <= desiredCapacity(%d) <= maxSize(%d)", minSize, desired, maxSize)
	}
	return asgSizes{MinSize: int32(minSize), MaxSize: int32(maxSize), DesiredCapacity: int32(desired)}, nil
}

// ASGHandler drives an EC2 autoscaling group through a suspend/resize/
// resume transition.
type ASGHandler struct {
	resource model.DiscoveredResource
	client   ASGClient
	config   asgConfig
	name     string

	sleep func(time.Duration)
}

// NewASGHandler builds an ASGHandler for resource.
func NewASGHandler(resource model.DiscoveredResource, client ASGClient, resourceDefaults map[string]any) (*ASGHandler, error) {
	cfg, err := decodeASGConfig(resourceDefaults)
	if err != nil {
		return nil, err
	}
	return &ASGHandler{
		resource: resource,
		client:   client,
		config:   cfg,
		name:     resource.ResourceID,
		sleep:    time.Sleep,
	}, nil
}

func (h *ASGHandler) describe(ctx context.Context) (asgtypes.AutoScalingGroup, error) {
	out, err := h.client.DescribeAutoScalingGroups(ctx, &autoscaling.DescribeAutoScalingGroupsInput{
		AutoScalingGroupNames: []string{h.name},
	})
	if err != nil {
		return asgtypes.AutoScalingGroup{}, err
	}
	if len(out.AutoScalingGroups) == 0 {
		return asgtypes.AutoScalingGroup{}, fmt.Errorf("autoscaling group %s not found", h.name)
	}
	return out.AutoScalingGroups[0], nil
}

// GetStatus returns the current min/max/desired sizes and instance count.
func (h *ASGHandler) GetStatus(ctx context.Context) (map[string]any, error) {
	group, err := h.describe(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"minSize":         aws.ToInt32(group.MinSize),
		"maxSize":         aws.ToInt32(group.MaxSize),
		"desiredCapacity": aws.ToInt32(group.DesiredCapacity),
		"instanceCount":   len(group.Instances),
	}, nil
}

// Stop suspends scaling processes and resizes the group down, per
// spec.md §4.3.4.
func (h *ASGHandler) Stop(ctx context.Context) model.HandlerResult {
	return h.transition(ctx, "stop", h.config.Stop, true)
}

// Start resizes the group up and resumes scaling processes, symmetric to
// Stop.
func (h *ASGHandler) Start(ctx context.Context) model.HandlerResult {
	return h.transition(ctx, "start", h.config.Start, false)
}

func (h *ASGHandler) transition(ctx context.Context, action string, target asgSizes, suspendFirst bool) model.HandlerResult {
	group, err := h.describe(ctx)
	if err != nil {
		return failure(action, h.resource, "Describe", err)
	}
	previousState := map[string]any{
		"minSize":         aws.ToInt32(group.MinSize),
		"maxSize":         aws.ToInt32(group.MaxSize),
		"desiredCapacity": aws.ToInt32(group.DesiredCapacity),
	}

	if aws.ToInt32(group.MinSize) == target.MinSize &&
		aws.ToInt32(group.MaxSize) == target.MaxSize &&
		aws.ToInt32(group.DesiredCapacity) == target.DesiredCapacity {
		r := idempotent(action, h.resource, "autoscaling group already at target sizes")
		r.PreviousState = previousState
		return r
	}

	if suspendFirst && h.config.SuspendProcesses {
		if _, err := h.client.SuspendProcesses(ctx, &autoscaling.SuspendProcessesInput{
			AutoScalingGroupName: aws.String(h.name),
			ScalingProcesses:     h.config.ProcessesToSuspend,
		}); err != nil {
			r := failure(action, h.resource, "SuspendProcesses", err)
			r.PreviousState = previousState
			return r
		}
	}

	if _, err := h.client.UpdateAutoScalingGroup(ctx, &autoscaling.UpdateAutoScalingGroupInput{
		AutoScalingGroupName: aws.String(h.name),
		MinSize:              aws.Int32(target.MinSize),
		MaxSize:              aws.Int32(target.MaxSize),
		DesiredCapacity:      aws.Int32(target.DesiredCapacity),
	}); err != nil {
		r := failure(action, h.resource, "UpdateAutoScalingGroup", err)
		r.PreviousState = previousState
		return r
	}

	if !suspendFirst && h.config.SuspendProcesses {
		if _, err := h.client.ResumeProcesses(ctx, &autoscaling.ResumeProcessesInput{
			AutoScalingGroupName: aws.String(h.name),
			ScalingProcesses:     h.config.ProcessesToSuspend,
		}); err != nil {
			r := failure(action, h.resource, "ResumeProcesses", err)
			r.PreviousState = previousState
			return r
		}
	}

	if h.config.WaitAfterCommand > 0 {
		h.sleep(time.Duration(h.config.WaitAfterCommand) * time.Second)
	}

	r := success(action, h.resource, fmt.Sprintf(
		"autoscaling group resized: min=%d max=%d desired=%d -> min=%d max=%d desired=%d",
		aws.ToInt32(group.MinSize), aws.ToInt32(group.MaxSize), aws.ToInt32(group.DesiredCapacity),
		target.MinSize, target.MaxSize, target.DesiredCapacity,
	))
	r.PreviousState = previousState
	return r
}

// IsReady implements the semantics of spec.md §4.3.4: when the group's
// current desired capacity is 0, ready iff it has zero instances;
// otherwise, ready iff the InService instance count equals the desired
// capacity.
func (h *ASGHandler) IsReady(ctx context.Context) (bool, error) {
	group, err := h.describe(ctx)
	if err != nil {
		return false, err
	}
	desired := aws.ToInt32(group.DesiredCapacity)
	if desired == 0 {
		return len(group.Instances) == 0, nil
	}
	var inService int32
	for _, inst := range group.Instances {
		if inst.LifecycleState == asgtypes.LifecycleStateInService {
			inService++
		}
	}
	return inService == desired, nil
}
