// Package discovery implements the tag-filter driven search over one or
// more regions that yields the flat list of DiscoveredResources the
// orchestrator acts on.
package discovery

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	rgtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/rs/zerolog/log"

	"github.com/vs-yuri-tsai/lights-out/internal/awsutil"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// TaggingClient is the narrow surface of resourcegroupstaggingapi.Client
// discovery depends on. Tests substitute a fake.
type TaggingClient interface {
	GetResources(ctx context.Context, in *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// ClientFactory builds a region-scoped TaggingClient. Production wires this
// to resourcegroupstaggingapi.NewFromConfig; tests inject a fake factory.
type ClientFactory func(cfg aws.Config, region string) TaggingClient

// Service runs tag-filtered discovery across the configured regions.
type Service struct {
	baseConfig aws.Config
	newClient  ClientFactory
}

// NewService returns a discovery Service scoped to baseConfig. newClient
// may be nil to use the production resourcegroupstaggingapi client.
func NewService(baseConfig aws.Config, newClient ClientFactory) *Service {
	if newClient == nil {
		newClient = func(cfg aws.Config, region string) TaggingClient {
			return resourcegroupstaggingapi.NewFromConfig(awsutil.ForRegion(cfg, region))
		}
	}
	return &Service{baseConfig: baseConfig, newClient: newClient}
}

// Filter describes one discovery request: the tag filters every returned
// resource must satisfy, the cloud-API resource-type filters to search
// against, and the regions to fan out across (empty means "host region
// only").
type Filter struct {
	TagFilters    map[string]string
	ResourceTypes []string
	Regions       []string
}

// Discover returns every resource matching all tag filters whose type is in
// the requested set, across the requested regions. If any single region's
// query fails, Discover fails as a whole — see spec.md §4.2 and §9 for why
// this is a deliberate fail-fast choice.
func (s *Service) Discover(ctx context.Context, filter Filter) ([]model.DiscoveredResource, error) {
	regions := filter.Regions
	if len(regions) == 0 {
		regions = []string{s.baseConfig.Region}
	}

	var out []model.DiscoveredResource
	for _, region := range regions {
		resources, err := s.discoverRegion(ctx, region, filter)
		if err != nil {
			return nil, fmt.Errorf("discover region %s: %w", region, err)
		}
		out = append(out, resources...)
	}
	return out, nil
}

func (s *Service) discoverRegion(ctx context.Context, region string, filter Filter) ([]model.DiscoveredResource, error) {
	client := s.newClient(s.baseConfig, region)

	tagFilters := make([]rgtypes.TagFilter, 0, len(filter.TagFilters))
	for key, value := range filter.TagFilters {
		tagFilters = append(tagFilters, rgtypes.TagFilter{
			Key:    aws.String(key),
			Values: []string{value},
		})
	}

	var resources []model.DiscoveredResource
	var token *string
	for {
		page, err := client.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
			ResourceTypeFilters: filter.ResourceTypes,
			TagFilters:          tagFilters,
			PaginationToken:     token,
		})
		if err != nil {
			return nil, err
		}

		for _, mapping := range page.ResourceTagMappingList {
			rawARN := aws.ToString(mapping.ResourceARN)
			tags := make(map[string]string, len(mapping.Tags))
			for _, t := range mapping.Tags {
				tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
			}

			resource, ok := toDiscoveredResource(rawARN, tags)
			if !ok {
				log.Warn().Str("arn", rawARN).Msg("discovery: skipping resource with unrecognized ARN shape")
				continue
			}
			resources = append(resources, resource)
		}

		if page.PaginationToken == nil || aws.ToString(page.PaginationToken) == "" {
			break
		}
		token = page.PaginationToken
	}

	return resources, nil
}
