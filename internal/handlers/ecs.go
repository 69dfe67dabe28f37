package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/applicationautoscaling"
	aastypes "github.com/aws/aws-sdk-go-v2/service/applicationautoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// ECSClient is the narrow surface of ecs.Client the handler depends on.
type ECSClient interface {
	DescribeServices(ctx context.Context, in *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
	UpdateService(ctx context.Context, in *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error)
}

// ApplicationAutoScalingClient is the narrow surface of
// applicationautoscaling.Client the handler depends on.
type ApplicationAutoScalingClient interface {
	RegisterScalableTarget(ctx context.Context, in *applicationautoscaling.RegisterScalableTargetInput, optFns ...func(*applicationautoscaling.Options)) (*applicationautoscaling.RegisterScalableTargetOutput, error)
}

// ECSHandler drives an ECS service through start/stop transitions,
// optionally registering it as an application-autoscaling target.
type ECSHandler struct {
	resource    model.DiscoveredResource
	ecsClient   ECSClient
	aasClient   ApplicationAutoScalingClient
	config      ecsConfig
	clusterName string
	serviceName string

	now func() time.Time
	sleep func(time.Duration)
}

// NewECSHandler builds an ECSHandler for resource, decoding its per-type
// defaults from resourceDefaults["ecs-service"].
func NewECSHandler(resource model.DiscoveredResource, ecsClient ECSClient, aasClient ApplicationAutoScalingClient, resourceDefaults map[string]any) (*ECSHandler, error) {
	cfg, err := decodeECSConfig(resourceDefaults)
	if err != nil {
		return nil, err
	}

	cluster, service, err := splitECSResourceID(resource)
	if err != nil {
		return nil, err
	}

	return &ECSHandler{
		resource:    resource,
		ecsClient:   ecsClient,
		aasClient:   aasClient,
		config:      cfg,
		clusterName: cluster,
		serviceName: service,
		now:         time.Now,
		sleep:       time.Sleep,
	}, nil
}

func splitECSResourceID(resource model.DiscoveredResource) (cluster, service string, err error) {
	if name, ok := resource.Metadata["cluster_name"].(string); ok && name != "" {
		cluster = name
	}
	// ResourceID is "<cluster>/<service>"; fall back to splitting it when
	// metadata did not carry the cluster name (e.g. synthetic test fixtures).
	idx := -1
	for i := len(resource.ResourceID) - 1; i >= 0; i-- {
		if resource.ResourceID[i] == '/' {
			idx = i
			break
		}
	}
	if idx == -1 {
		return "", "", fmt.Errorf("ecs-service resourceId %q is not in <cluster>/<service> form", resource.ResourceID)
	}
	if cluster == "" {
		cluster = resource.ResourceID[:idx]
	}
	service = resource.ResourceID[idx+1:]
	return cluster, service, nil
}

func (h *ECSHandler) describe(ctx context.Context) (ecstypes.Service, error) {
	out, err := h.ecsClient.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(h.clusterName),
		Services: []string{h.serviceName},
	})
	if err != nil {
		return ecstypes.Service{}, err
	}
	if len(out.Services) == 0 {
		return ecstypes.Service{}, fmt.Errorf("service %s not found in cluster %s", h.serviceName, h.clusterName)
	}
	return out.Services[0], nil
}

// GetStatus returns the current desiredCount/runningCount/status snapshot.
func (h *ECSHandler) GetStatus(ctx context.Context) (map[string]any, error) {
	svc, err := h.describe(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"desiredCount": svc.DesiredCount,
		"runningCount": svc.RunningCount,
		"status":       aws.ToString(svc.Status),
	}, nil
}

// Start drives the service to its configured "start" target.
func (h *ECSHandler) Start(ctx context.Context) model.HandlerResult {
	return h.transition(ctx, "start", h.config.Start)
}

// Stop drives the service to its configured "stop" target.
func (h *ECSHandler) Stop(ctx context.Context) model.HandlerResult {
	return h.transition(ctx, "stop", h.config.Stop)
}

func (h *ECSHandler) transition(ctx context.Context, action string, target ecsActionConfig) model.HandlerResult {
	svc, err := h.describe(ctx)
	if err != nil {
		return failure(action, h.resource, "Describe", err)
	}
	status := aws.ToString(svc.Status)
	previousState := map[string]any{
		"desiredCount": svc.DesiredCount,
		"runningCount": svc.RunningCount,
		"status":       status,
	}

	if svc.DesiredCount == target.DesiredCount {
		r := idempotent(action, h.resource, fmt.Sprintf("ecs service already at desiredCount=%d", target.DesiredCount))
		r.PreviousState = previousState
		return r
	}

	if status != "ACTIVE" {
		r := refusal(action, h.resource, status)
		r.PreviousState = previousState
		return r
	}

	mode := "direct"
	if target.Mode == ecsModeAutoscaling {
		mode = "autoscaling"
		_, err := h.aasClient.RegisterScalableTarget(ctx, &applicationautoscaling.RegisterScalableTargetInput{
			ServiceNamespace:  aastypes.ServiceNamespaceEcs,
			ResourceId:        aws.String(fmt.Sprintf("service/%s/%s", h.clusterName, h.serviceName)),
			ScalableDimension: aastypes.ScalableDimensionECSServiceDesiredCount,
			MinCapacity:       aws.Int32(target.MinCapacity),
			MaxCapacity:       aws.Int32(target.MaxCapacity),
		})
		if err != nil {
			return failure(action, h.resource, "RegisterScalableTarget", err)
		}
	}

	_, err = h.ecsClient.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:      aws.String(h.clusterName),
		Service:      aws.String(h.serviceName),
		DesiredCount: aws.Int32(target.DesiredCount),
	})
	if err != nil {
		return failure(action, h.resource, "UpdateService", err)
	}

	if h.config.WaitForStable {
		if err := h.waitForStable(ctx, target.DesiredCount); err != nil {
			r := failure(action, h.resource, "WaitForStable", err)
			r.PreviousState = previousState
			return r
		}
	}

	r := success(action, h.resource, fmt.Sprintf(
		"ecs service updated (%s mode): desiredCount %d -> %d",
		mode, svc.DesiredCount, target.DesiredCount,
	))
	r.PreviousState = previousState
	return r
}

// waitForStable polls the service until runningCount equals desiredCount
// or the configured timeout elapses.
func (h *ECSHandler) waitForStable(ctx context.Context, desiredCount int32) error {
	deadline := h.now().Add(time.Duration(h.config.StableTimeoutSeconds) * time.Second)
	const pollInterval = 5 * time.Second

	for {
		svc, err := h.describe(ctx)
		if err != nil {
			return err
		}
		if svc.RunningCount == desiredCount {
			return nil
		}
		if h.now().After(deadline) {
			return fmt.Errorf("timed out after %ds waiting for runningCount to reach %d (currently %d)",
				h.config.StableTimeoutSeconds, desiredCount, svc.RunningCount)
		}
		h.sleep(pollInterval)
	}
}

// IsReady reports whether the service's runningCount matches its
// desiredCount.
func (h *ECSHandler) IsReady(ctx context.Context) (bool, error) {
	svc, err := h.describe(ctx)
	if err != nil {
		return false, err
	}
	return svc.RunningCount == svc.DesiredCount, nil
}
