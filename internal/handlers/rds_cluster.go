package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/vs-yuri-tsai/lights-out/internal/logging"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// RDSClusterClient is the narrow surface of rds.Client the Aurora cluster
// handler depends on. Unlike the instance API, the cluster stop call never
// accepts a snapshot parameter.
type RDSClusterClient interface {
	DescribeDBClusters(ctx context.Context, in *rds.DescribeDBClustersInput, optFns ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error)
	StopDBCluster(ctx context.Context, in *rds.StopDBClusterInput, optFns ...func(*rds.Options)) (*rds.StopDBClusterOutput, error)
	StartDBCluster(ctx context.Context, in *rds.StartDBClusterInput, optFns ...func(*rds.Options)) (*rds.StartDBClusterOutput, error)
}

// RDSClusterHandler drives an Aurora cluster through a fire-and-forget
// stop/start transition. Stopping a cluster implicitly stops all of its
// member instances; the handler never requests a cluster snapshot.
type RDSClusterHandler struct {
	resource  model.DiscoveredResource
	client    RDSClusterClient
	config    rdsInstanceConfig
	clusterID string

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRDSClusterHandler builds an RDSClusterHandler for resource. It reuses
// the rds-db waitAfterCommand default/decoding since clusters share the
// same fire-and-forget wait semantics; skipSnapshot is read but never acted
// on, since the cluster API has no snapshot parameter to pass.
func NewRDSClusterHandler(resource model.DiscoveredResource, client RDSClusterClient, resourceDefaults map[string]any) *RDSClusterHandler {
	return &RDSClusterHandler{
		resource:  resource,
		client:    client,
		config:    decodeRDSInstanceConfig(resourceDefaults),
		clusterID: resource.ResourceID,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

func (h *RDSClusterHandler) describe(ctx context.Context) (status string, memberCount int, err error) {
	out, err := h.client.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(h.clusterID),
	})
	if err != nil {
		return "", 0, err
	}
	if len(out.DBClusters) == 0 {
		return "", 0, fmt.Errorf("cluster %s not found", h.clusterID)
	}
	cluster := out.DBClusters[0]
	return aws.ToString(cluster.Status), len(cluster.DBClusterMembers), nil
}

// GetStatus returns the current cluster status and member instance count.
func (h *RDSClusterHandler) GetStatus(ctx context.Context) (map[string]any, error) {
	status, members, err := h.describe(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": status, "memberCount": members}, nil
}

// Stop issues a fire-and-forget cluster stop per spec.md §4.3.3.
func (h *RDSClusterHandler) Stop(ctx context.Context) model.HandlerResult {
	status, members, err := h.describe(ctx)
	if err != nil {
		return failure("stop", h.resource, "Describe", err)
	}
	previousState := map[string]any{"status": status, "memberCount": members}

	if status == "stopped" || status == "stopping" {
		r := idempotent("stop", h.resource, fmt.Sprintf("rds cluster already %s", status))
		r.PreviousState = previousState
		return r
	}
	if status != "available" {
		r := refusal("stop", h.resource, status)
		r.PreviousState = previousState
		return r
	}

	if _, err := h.client.StopDBCluster(ctx, &rds.StopDBClusterInput{
		DBClusterIdentifier: aws.String(h.clusterID),
	}); err != nil {
		r := failure("stop", h.resource, "StopDBCluster", err)
		r.PreviousState = previousState
		return r
	}

	h.sleep(time.Duration(h.config.WaitAfterCommand) * time.Second)

	if newStatus, _, err := h.describe(ctx); err == nil && newStatus != "stopping" && newStatus != "stopped" {
		logging.ForResource("stop", h.clusterID).Warn().
			Str("status", newStatus).
			Msg("rds cluster has not yet left available state after waitAfterCommand")
	}

	r := success("stop", h.resource, fmt.Sprintf(
		"stop initiated for cluster and its %d member instance(s); full transition typically takes 5-10 minutes",
		members,
	))
	r.PreviousState = previousState
	return r
}

// Start issues a fire-and-forget cluster start, symmetric to Stop.
func (h *RDSClusterHandler) Start(ctx context.Context) model.HandlerResult {
	status, members, err := h.describe(ctx)
	if err != nil {
		return failure("start", h.resource, "Describe", err)
	}
	previousState := map[string]any{"status": status, "memberCount": members}

	if status == "available" || status == "starting" {
		r := idempotent("start", h.resource, fmt.Sprintf("rds cluster already %s", status))
		r.PreviousState = previousState
		return r
	}
	if status != "stopped" {
		r := refusal("start", h.resource, status)
		r.PreviousState = previousState
		return r
	}

	if _, err := h.client.StartDBCluster(ctx, &rds.StartDBClusterInput{
		DBClusterIdentifier: aws.String(h.clusterID),
	}); err != nil {
		r := failure("start", h.resource, "StartDBCluster", err)
		r.PreviousState = previousState
		return r
	}

	h.sleep(time.Duration(h.config.WaitAfterCommand) * time.Second)

	r := success("start", h.resource, fmt.Sprintf(
		"start initiated for cluster and its %d member instance(s); full transition typically takes 5-10 minutes",
		members,
	))
	r.PreviousState = previousState
	return r
}

// IsReady reports the cluster's terminal state directly, mirroring
// RDSInstanceHandler.IsReady.
func (h *RDSClusterHandler) IsReady(ctx context.Context) (bool, error) {
	status, _, err := h.describe(ctx)
	if err != nil {
		return false, err
	}
	return status == "available" || status == "stopped", nil
}
