package handlers

import (
	"fmt"
)

// ecsMode distinguishes the two shapes an ECS start/stop block may take,
// discriminated by the presence of minCapacity/maxCapacity (spec.md §9).
type ecsMode int

const (
	ecsModeDirect ecsMode = iota
	ecsModeAutoscaling
)

// ecsActionConfig is one decoded {desiredCount} or {minCapacity,maxCapacity,
// desiredCount} block.
type ecsActionConfig struct {
	Mode         ecsMode
	DesiredCount int32
	MinCapacity  int32
	MaxCapacity  int32
}

// ecsConfig is the fully decoded resource_defaults["ecs-service"] block.
type ecsConfig struct {
	WaitForStable        bool
	StableTimeoutSeconds int
	Start                ecsActionConfig
	Stop                 ecsActionConfig
}

const (
	defaultECSWaitForStable        = true
	defaultECSStableTimeoutSeconds = 300
)

// decodeECSConfig builds an ecsConfig from the raw resource_defaults
// document, applying spec.md §4.3.1 defaults and validating the
// 0 <= minCapacity <= desiredCount <= maxCapacity invariant for both
// start and stop blocks when present.
func decodeECSConfig(raw map[string]any) (ecsConfig, error) {
	cfg := ecsConfig{
		WaitForStable:        defaultECSWaitForStable,
		StableTimeoutSeconds: defaultECSStableTimeoutSeconds,
	}

	if raw == nil {
		return ecsConfig{}, fmt.Errorf("resource_defaults[\"ecs-service\"] is required")
	}

	if v, ok := raw["waitForStable"].(bool); ok {
		cfg.WaitForStable = v
	}
	if v, ok := asInt(raw["stableTimeoutSeconds"]); ok {
		cfg.StableTimeoutSeconds = v
	}

	startBlock, ok := raw["start"].(map[string]any)
	if !ok {
		return ecsConfig{}, fmt.Errorf("resource_defaults[\"ecs-service\"].start is required")
	}
	start, err := decodeECSActionConfig(startBlock)
	if err != nil {
		return ecsConfig{}, fmt.Errorf("start: %w", err)
	}
	cfg.Start = start

	stopBlock, ok := raw["stop"].(map[string]any)
	if !ok {
		return ecsConfig{}, fmt.Errorf("resource_defaults[\"ecs-service\"].stop is required")
	}
	stop, err := decodeECSActionConfig(stopBlock)
	if err != nil {
		return ecsConfig{}, fmt.Errorf("stop: %w", err)
	}
	cfg.Stop = stop

	return cfg, nil
}

func decodeECSActionConfig(block map[string]any) (ecsActionConfig, error) {
	desired, ok := asInt(block["desiredCount"])
	if !ok {
		return ecsActionConfig{}, fmt.Errorf("desiredCount is required")
	}

	minRaw, hasMin := asInt(block["minCapacity"])
	maxRaw, hasMax := asInt(block["maxCapacity"])
	if !hasMin && !hasMax {
		if desired < 0 {
			return ecsActionConfig{}, fmt.Errorf("desiredCount must be non-negative, got %d", desired)
		}
		return ecsActionConfig{Mode: ecsModeDirect, DesiredCount: int32(desired)}, nil
	}
	if !hasMin || !hasMax {
		return ecsActionConfig{}, fmt.Errorf("autoscaling mode requires both minCapacity and maxCapacity")
	}

	if !(0 <= minRaw && minRaw <= desired && desired <= maxRaw) {
		return ecsActionConfig{}, fmt.Errorf("invalid bounds: must satisfy 0 <= minCapacity(%d) <= desiredCount(%d) <= maxCapacity(%d)", minRaw, desired, maxRaw)
	}

	return ecsActionConfig{
		Mode:         ecsModeAutoscaling,
		DesiredCount: int32(desired),
		MinCapacity:  int32(minRaw),
		MaxCapacity:  int32(maxRaw),
	}, nil
}

// asInt coerces a YAML-decoded numeric value (int, int64, or float64,
// depending on how the document was written) to int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
