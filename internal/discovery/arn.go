package discovery

import (
	"strconv"
	"strings"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// arn is a parsed "arn:<partition>:<service>:<region>:<account>:<resource>"
// identifier. The resource segment itself varies in shape by service, so it
// is kept raw and interpreted per-kind by classify.
type arn struct {
	Partition string
	Service   string
	Region    string
	Account   string
	Resource  string
}

// parseARN splits a canonical ARN into its six colon-delimited segments.
// The resource segment may itself contain colons or slashes depending on
// the service; parseARN does not attempt to split it further.
func parseARN(raw string) (arn, bool) {
	parts := strings.SplitN(raw, ":", 6)
	if len(parts) != 6 || parts[0] != "arn" {
		return arn{}, false
	}
	return arn{
		Partition: parts[1],
		Service:   parts[2],
		Region:    parts[3],
		Account:   parts[4],
		Resource:  parts[5],
	}, true
}

// classify derives the canonical resourceType tag and resourceId from a
// parsed ARN, per the resource-type rules in spec.md §4.2.
func classify(a arn) (resourceType, resourceID string, metadata map[string]any) {
	switch a.Service {
	case "ecs":
		return classifyECS(a.Resource)
	case "rds":
		return classifyRDS(a.Resource)
	case "autoscaling":
		return classifyAutoScaling(a.Resource)
	case "ec2":
		return classifyEC2(a.Resource)
	default:
		return "", "", nil
	}
}

// classifyECS handles "service/<cluster>/<name>" and the legacy
// "service/<name>" shape (no cluster segment), falling back to cluster
// "default" for the latter.
func classifyECS(resource string) (string, string, map[string]any) {
	if !strings.HasPrefix(resource, "service/") {
		return "", "", nil
	}
	rest := strings.TrimPrefix(resource, "service/")
	segs := strings.Split(rest, "/")
	switch len(segs) {
	case 2:
		cluster, service := segs[0], segs[1]
		return "ecs-service", cluster + "/" + service, map[string]any{"cluster_name": cluster}
	case 1:
		cluster := "default"
		return "ecs-service", cluster + "/" + segs[0], map[string]any{"cluster_name": cluster}
	default:
		return "", "", nil
	}
}

// classifyRDS handles "db:<instance-id>" and "cluster:<cluster-id>".
func classifyRDS(resource string) (string, string, map[string]any) {
	switch {
	case strings.HasPrefix(resource, "db:"):
		return "rds-db", strings.TrimPrefix(resource, "db:"), nil
	case strings.HasPrefix(resource, "cluster:"):
		return "rds-cluster", strings.TrimPrefix(resource, "cluster:"), nil
	default:
		return "", "", nil
	}
}

// classifyAutoScaling handles "autoScalingGroupName/<name>" as well as the
// tag-search API's "autoScalingGroup:<id>:autoScalingGroupName/<name>" shape.
func classifyAutoScaling(resource string) (string, string, map[string]any) {
	if idx := strings.LastIndex(resource, "autoScalingGroupName/"); idx != -1 {
		name := resource[idx+len("autoScalingGroupName/"):]
		return "autoscaling-group", name, nil
	}
	return "", "", nil
}

// classifyEC2 handles "instance/<instance-id>".
func classifyEC2(resource string) (string, string, map[string]any) {
	if strings.HasPrefix(resource, "instance/") {
		return "ec2-instance", strings.TrimPrefix(resource, "instance/"), nil
	}
	return "", "", nil
}

// toDiscoveredResource builds the uniform resource record from a raw ARN
// and its tag set, applying the lights-out:priority / lights-out:group
// conventions and the default fallbacks from spec.md §4.2.
func toDiscoveredResource(rawARN string, tags map[string]string) (model.DiscoveredResource, bool) {
	a, ok := parseARN(rawARN)
	if !ok {
		return model.DiscoveredResource{}, false
	}
	resourceType, resourceID, metadata := classify(a)
	if resourceType == "" {
		return model.DiscoveredResource{}, false
	}

	priority := model.DefaultPriority
	if raw, ok := tags[model.TagPriority]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			priority = parsed
		}
	}

	group := model.DefaultGroup
	if raw, ok := tags[model.TagGroup]; ok && raw != "" {
		group = raw
	}

	return model.DiscoveredResource{
		ResourceType: resourceType,
		ARN:          rawARN,
		ResourceID:   resourceID,
		Region:       a.Region,
		Priority:     priority,
		Group:        group,
		Tags:         tags,
		Metadata:     metadata,
	}, true
}
