package handlers

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/applicationautoscaling"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/vs-yuri-tsai/lights-out/internal/awsutil"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// New maps a resourceType to its concrete Handler, scoping all cloud-API
// clients to the resource's region. It returns (nil, nil) for a type not
// in the closed set — the orchestrator treats that as a per-resource
// HANDLER_NOT_FOUND failure, never a global error — per spec.md §4.3.5.
func New(resource model.DiscoveredResource, baseConfig aws.Config, resourceDefaults map[string]map[string]any) (Handler, error) {
	regional := awsutil.ForRegion(baseConfig, resource.Region)

	switch resource.ResourceType {
	case "ecs-service":
		return NewECSHandler(
			resource,
			ecs.NewFromConfig(regional),
			applicationautoscaling.NewFromConfig(regional),
			resourceDefaults["ecs-service"],
		)
	case "rds-db":
		return NewRDSInstanceHandler(resource, rds.NewFromConfig(regional), resourceDefaults["rds-db"]), nil
	case "rds-cluster":
		return NewRDSClusterHandler(resource, rds.NewFromConfig(regional), resourceDefaults["rds-cluster"]), nil
	case "autoscaling-group":
		return NewASGHandler(resource, autoscaling.NewFromConfig(regional), resourceDefaults["autoscaling-group"])
	default:
		return nil, nil
	}
}
