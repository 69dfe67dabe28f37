package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

func resourceWithPriority(id string, priority int) model.DiscoveredResource {
	return model.DiscoveredResource{ResourceID: id, Priority: priority}
}

func TestSortResources_AscendingForStart(t *testing.T) {
	resources := []model.DiscoveredResource{
		resourceWithPriority("c", 30),
		resourceWithPriority("a", 10),
		resourceWithPriority("b", 20),
	}
	ordered := sortResources(resources, model.ActionStart)
	assert.Equal(t, []string{"a", "b", "c"}, idsOf(ordered))
}

func TestSortResources_DescendingForStop(t *testing.T) {
	resources := []model.DiscoveredResource{
		resourceWithPriority("a", 10),
		resourceWithPriority("c", 30),
		resourceWithPriority("b", 20),
	}
	ordered := sortResources(resources, model.ActionStop)
	assert.Equal(t, []string{"c", "b", "a"}, idsOf(ordered))
}

func TestSortResources_StableWithinSamePriority(t *testing.T) {
	resources := []model.DiscoveredResource{
		resourceWithPriority("first", 10),
		resourceWithPriority("second", 10),
		resourceWithPriority("third", 10),
	}
	ordered := sortResources(resources, model.ActionStart)
	assert.Equal(t, []string{"first", "second", "third"}, idsOf(ordered))
}

func TestSortResources_UntouchedForStatusAndDiscover(t *testing.T) {
	resources := []model.DiscoveredResource{
		resourceWithPriority("b", 20),
		resourceWithPriority("a", 10),
	}
	ordered := sortResources(resources, model.ActionStatus)
	assert.Equal(t, []string{"b", "a"}, idsOf(ordered))
}

func TestSortResources_DoesNotMutateInput(t *testing.T) {
	resources := []model.DiscoveredResource{
		resourceWithPriority("b", 20),
		resourceWithPriority("a", 10),
	}
	_ = sortResources(resources, model.ActionStart)
	assert.Equal(t, []string{"b", "a"}, idsOf(resources), "sortResources must return a copy")
}

func TestGroupByPriority_PartitionsConsecutiveRuns(t *testing.T) {
	ordered := []model.DiscoveredResource{
		resourceWithPriority("a", 10),
		resourceWithPriority("b", 10),
		resourceWithPriority("c", 20),
		resourceWithPriority("d", 20),
		resourceWithPriority("e", 30),
	}
	groups := groupByPriority(ordered)
	assert.Len(t, groups, 3)
	assert.Equal(t, []string{"a", "b"}, idsOf(groups[0].resources))
	assert.Equal(t, []string{"c", "d"}, idsOf(groups[1].resources))
	assert.Equal(t, []string{"e"}, idsOf(groups[2].resources))
}

func TestGroupByPriority_EmptyInput(t *testing.T) {
	assert.Empty(t, groupByPriority(nil))
}

func idsOf(resources []model.DiscoveredResource) []string {
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.ResourceID
	}
	return ids
}
