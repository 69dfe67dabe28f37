package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStrategy_DefaultsWhenUnset(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultExecutionStrategy, cfg.EffectiveStrategy())
}

func TestEffectiveStrategy_DefaultsWhenUnrecognized(t *testing.T) {
	cfg := &Config{Settings: Settings{ExecutionStrategy: "bogus"}}
	assert.Equal(t, DefaultExecutionStrategy, cfg.EffectiveStrategy())
}

func TestEffectiveStrategy_HonorsConfiguredValue(t *testing.T) {
	cfg := &Config{Settings: Settings{ExecutionStrategy: StrategySequential}}
	assert.Equal(t, StrategySequential, cfg.EffectiveStrategy())
}
