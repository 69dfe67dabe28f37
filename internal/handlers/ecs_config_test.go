package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeECSConfig_Defaults(t *testing.T) {
	raw := map[string]any{
		"start": map[string]any{"desiredCount": 2},
		"stop":  map[string]any{"desiredCount": 0},
	}
	cfg, err := decodeECSConfig(raw)
	require.NoError(t, err)
	assert.True(t, cfg.WaitForStable)
	assert.Equal(t, defaultECSStableTimeoutSeconds, cfg.StableTimeoutSeconds)
	assert.Equal(t, ecsModeDirect, cfg.Start.Mode)
	assert.Equal(t, int32(2), cfg.Start.DesiredCount)
}

func TestDecodeECSConfig_AutoscalingMode(t *testing.T) {
	raw := map[string]any{
		"start": map[string]any{"desiredCount": 4, "minCapacity": 2, "maxCapacity": 8},
		"stop":  map[string]any{"desiredCount": 0},
	}
	cfg, err := decodeECSConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, ecsModeAutoscaling, cfg.Start.Mode)
	assert.Equal(t, int32(2), cfg.Start.MinCapacity)
	assert.Equal(t, int32(8), cfg.Start.MaxCapacity)
}

func TestDecodeECSConfig_MissingStartBlock(t *testing.T) {
	raw := map[string]any{
		"stop": map[string]any{"desiredCount": 0},
	}
	_, err := decodeECSConfig(raw)
	assert.Error(t, err)
}

func TestDecodeECSConfig_NilRaw(t *testing.T) {
	_, err := decodeECSConfig(nil)
	assert.Error(t, err)
}

func TestDecodeECSActionConfig_OnlyOneOfMinMaxIsInvalid(t *testing.T) {
	_, err := decodeECSActionConfig(map[string]any{"desiredCount": 2, "minCapacity": 1})
	assert.Error(t, err)
}

func TestDecodeECSActionConfig_OutOfBoundsIsInvalid(t *testing.T) {
	_, err := decodeECSActionConfig(map[string]any{"desiredCount": 10, "minCapacity": 2, "maxCapacity": 8})
	assert.Error(t, err)
}

func TestDecodeECSActionConfig_MissingDesiredCount(t *testing.T) {
	_, err := decodeECSActionConfig(map[string]any{})
	assert.Error(t, err)
}

func TestAsInt_CoercesYAMLNumericTypes(t *testing.T) {
	cases := []any{int(3), int64(3), float64(3)}
	for _, c := range cases {
		n, ok := asInt(c)
		assert.True(t, ok)
		assert.Equal(t, 3, n)
	}

	_, ok := asInt("3")
	assert.False(t, ok)
}
