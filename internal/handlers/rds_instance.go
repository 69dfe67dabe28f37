package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/vs-yuri-tsai/lights-out/internal/logging"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// RDSInstanceClient is the narrow surface of rds.Client the instance
// handler depends on.
type RDSInstanceClient interface {
	DescribeDBInstances(ctx context.Context, in *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	StopDBInstance(ctx context.Context, in *rds.StopDBInstanceInput, optFns ...func(*rds.Options)) (*rds.StopDBInstanceOutput, error)
	StartDBInstance(ctx context.Context, in *rds.StartDBInstanceInput, optFns ...func(*rds.Options)) (*rds.StartDBInstanceOutput, error)
}

const (
	defaultRDSWaitAfterCommand = 60
	defaultRDSSkipSnapshot     = true
)

type rdsInstanceConfig struct {
	WaitAfterCommand int
	SkipSnapshot     bool
}

func decodeRDSInstanceConfig(raw map[string]any) rdsInstanceConfig {
	cfg := rdsInstanceConfig{
		WaitAfterCommand: defaultRDSWaitAfterCommand,
		SkipSnapshot:     defaultRDSSkipSnapshot,
	}
	if raw == nil {
		return cfg
	}
	if v, ok := asInt(raw["waitAfterCommand"]); ok {
		cfg.WaitAfterCommand = v
	}
	if v, ok := raw["skipSnapshot"].(bool); ok {
		cfg.SkipSnapshot = v
	}
	return cfg
}

// RDSInstanceHandler drives a single RDS instance through a
// fire-and-forget stop/start transition.
type RDSInstanceHandler struct {
	resource   model.DiscoveredResource
	client     RDSInstanceClient
	config     rdsInstanceConfig
	instanceID string

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRDSInstanceHandler builds an RDSInstanceHandler for resource.
func NewRDSInstanceHandler(resource model.DiscoveredResource, client RDSInstanceClient, resourceDefaults map[string]any) *RDSInstanceHandler {
	return &RDSInstanceHandler{
		resource:   resource,
		client:     client,
		config:     decodeRDSInstanceConfig(resourceDefaults),
		instanceID: resource.ResourceID,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

func (h *RDSInstanceHandler) describe(ctx context.Context) (string, error) {
	out, err := h.client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(h.instanceID),
	})
	if err != nil {
		return "", err
	}
	if len(out.DBInstances) == 0 {
		return "", fmt.Errorf("instance %s not found", h.instanceID)
	}
	return aws.ToString(out.DBInstances[0].DBInstanceStatus), nil
}

// GetStatus returns the current instance status.
func (h *RDSInstanceHandler) GetStatus(ctx context.Context) (map[string]any, error) {
	status, err := h.describe(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": status}, nil
}

// Stop issues a fire-and-forget stop per spec.md §4.3.2.
func (h *RDSInstanceHandler) Stop(ctx context.Context) model.HandlerResult {
	status, err := h.describe(ctx)
	if err != nil {
		return failure("stop", h.resource, "Describe", err)
	}
	previousState := map[string]any{"status": status}

	if status == "stopped" || status == "stopping" {
		r := idempotent("stop", h.resource, fmt.Sprintf("rds instance already %s", status))
		r.PreviousState = previousState
		return r
	}
	if status != "available" {
		r := refusal("stop", h.resource, status)
		r.PreviousState = previousState
		return r
	}

	in := &rds.StopDBInstanceInput{DBInstanceIdentifier: aws.String(h.instanceID)}
	if !h.config.SkipSnapshot {
		in.DBSnapshotIdentifier = aws.String(snapshotIdentifier(h.instanceID, h.now()))
	}
	if _, err := h.client.StopDBInstance(ctx, in); err != nil {
		r := failure("stop", h.resource, "StopDBInstance", err)
		r.PreviousState = previousState
		return r
	}

	h.sleep(time.Duration(h.config.WaitAfterCommand) * time.Second)

	if newStatus, err := h.describe(ctx); err == nil && newStatus != "stopping" && newStatus != "stopped" {
		logging.ForResource("stop", h.instanceID).Warn().
			Str("status", newStatus).
			Msg("rds instance has not yet left available state after waitAfterCommand")
	}

	r := success("stop", h.resource, "stop initiated; full transition to stopped typically takes 5-10 minutes")
	r.PreviousState = previousState
	return r
}

// Start issues a fire-and-forget start, symmetric to Stop.
func (h *RDSInstanceHandler) Start(ctx context.Context) model.HandlerResult {
	status, err := h.describe(ctx)
	if err != nil {
		return failure("start", h.resource, "Describe", err)
	}
	previousState := map[string]any{"status": status}

	if status == "available" || status == "starting" {
		r := idempotent("start", h.resource, fmt.Sprintf("rds instance already %s", status))
		r.PreviousState = previousState
		return r
	}
	if status != "stopped" {
		r := refusal("start", h.resource, status)
		r.PreviousState = previousState
		return r
	}

	if _, err := h.client.StartDBInstance(ctx, &rds.StartDBInstanceInput{
		DBInstanceIdentifier: aws.String(h.instanceID),
	}); err != nil {
		r := failure("start", h.resource, "StartDBInstance", err)
		r.PreviousState = previousState
		return r
	}

	h.sleep(time.Duration(h.config.WaitAfterCommand) * time.Second)

	r := success("start", h.resource, "start initiated; full transition to available typically takes 5-10 minutes")
	r.PreviousState = previousState
	return r
}

// IsReady is not meaningful for a fire-and-forget resource within one
// invocation; it reports the instance's terminal state directly.
func (h *RDSInstanceHandler) IsReady(ctx context.Context) (bool, error) {
	status, err := h.describe(ctx)
	if err != nil {
		return false, err
	}
	return status == "available" || status == "stopped", nil
}

// snapshotIdentifier builds "lights-out-<instanceId>-<timestamp>" per
// spec.md §4.3.2, replacing the colons and dots an ISO-8601 timestamp
// would otherwise carry (disallowed in snapshot identifiers) with hyphens.
func snapshotIdentifier(instanceID string, at time.Time) string {
	ts := at.UTC().Format("2006-01-02T15:04:05")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("lights-out-%s-%s", instanceID, ts)
}
