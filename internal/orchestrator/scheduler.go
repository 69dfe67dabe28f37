// Package orchestrator wires discovery and the handler factory together:
// given an already loaded Config, it turns one invocation (action +
// optional targetGroup) into an aggregated OrchestrationResult.
package orchestrator

import (
	"sort"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// sortResources orders resources per spec.md §4.4: ascending priority for
// start, descending for stop, discovery order preserved for status and
// discover. Sorting is stable so within-priority order is left to
// discovery's own order rather than randomized by the sort.
func sortResources(resources []model.DiscoveredResource, action model.Action) []model.DiscoveredResource {
	ordered := make([]model.DiscoveredResource, len(resources))
	copy(ordered, resources)

	switch action {
	case model.ActionStart:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Priority < ordered[j].Priority
		})
	case model.ActionStop:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Priority > ordered[j].Priority
		})
	}
	return ordered
}

// priorityGroup is one maximal run of resources sharing a priority value,
// in the order produced by sortResources.
type priorityGroup struct {
	priority  int
	resources []model.DiscoveredResource
}

// groupByPriority partitions an already-sorted resource list into
// consecutive priority groups, preserving their relative order.
func groupByPriority(ordered []model.DiscoveredResource) []priorityGroup {
	var groups []priorityGroup
	for _, r := range ordered {
		if len(groups) > 0 && groups[len(groups)-1].priority == r.Priority {
			last := &groups[len(groups)-1]
			last.resources = append(last.resources, r)
			continue
		}
		groups = append(groups, priorityGroup{priority: r.Priority, resources: []model.DiscoveredResource{r}})
	}
	return groups
}
