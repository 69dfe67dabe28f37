package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrchestrationResult_AddTracksTallies(t *testing.T) {
	var result OrchestrationResult
	result.Add(HandlerResult{Success: true})
	result.Add(HandlerResult{Success: false})
	result.Add(HandlerResult{Success: true})

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Results, 3)
}
