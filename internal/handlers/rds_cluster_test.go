package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

type fakeRDSClusterClient struct {
	status        string
	members       int
	stopCall      *rds.StopDBClusterInput
	startCall     *rds.StartDBClusterInput
}

func (f *fakeRDSClusterClient) DescribeDBClusters(ctx context.Context, in *rds.DescribeDBClustersInput, optFns ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error) {
	members := make([]rdstypes.DBClusterMember, f.members)
	return &rds.DescribeDBClustersOutput{
		DBClusters: []rdstypes.DBCluster{{Status: aws.String(f.status), DBClusterMembers: members}},
	}, nil
}

func (f *fakeRDSClusterClient) StopDBCluster(ctx context.Context, in *rds.StopDBClusterInput, optFns ...func(*rds.Options)) (*rds.StopDBClusterOutput, error) {
	f.stopCall = in
	return &rds.StopDBClusterOutput{}, nil
}

func (f *fakeRDSClusterClient) StartDBCluster(ctx context.Context, in *rds.StartDBClusterInput, optFns ...func(*rds.Options)) (*rds.StartDBClusterOutput, error) {
	f.startCall = in
	return &rds.StartDBClusterOutput{}, nil
}

func newTestRDSClusterHandler(client *fakeRDSClusterClient) *RDSClusterHandler {
	resource := model.DiscoveredResource{ResourceType: "rds-cluster", ResourceID: "my-cluster", Region: "us-east-1"}
	h := NewRDSClusterHandler(resource, client, nil)
	h.sleep = func(time.Duration) {}
	return h
}

func TestRDSClusterHandler_Stop_MentionsMemberCount(t *testing.T) {
	client := &fakeRDSClusterClient{status: "available", members: 3}
	h := newTestRDSClusterHandler(client)

	result := h.Stop(context.Background())
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "3 member instance(s)")
	assert.NotNil(t, client.stopCall)
}

func TestRDSClusterHandler_Stop_NeverSetsSnapshotParameter(t *testing.T) {
	client := &fakeRDSClusterClient{status: "available", members: 1}
	h := newTestRDSClusterHandler(client)

	h.Stop(context.Background())
	require.NotNil(t, client.stopCall)
	// StopDBClusterInput has no snapshot field at all; this just documents
	// that the handler passes nothing beyond the identifier.
	assert.Equal(t, "my-cluster", aws.ToString(client.stopCall.DBClusterIdentifier))
}

func TestRDSClusterHandler_Stop_RefusesTransientState(t *testing.T) {
	client := &fakeRDSClusterClient{status: "backing-up", members: 2}
	h := newTestRDSClusterHandler(client)

	result := h.Stop(context.Background())
	assert.False(t, result.Success)
	assert.Nil(t, client.stopCall)
}

func TestRDSClusterHandler_Start_IdempotentWhenAlreadyAvailable(t *testing.T) {
	client := &fakeRDSClusterClient{status: "available", members: 2}
	h := newTestRDSClusterHandler(client)

	result := h.Start(context.Background())
	assert.True(t, result.Success)
	assert.True(t, result.Idempotent)
	assert.Nil(t, client.startCall)
}
