package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/vs-yuri-tsai/lights-out/internal/awsutil"
	"github.com/vs-yuri-tsai/lights-out/internal/config"
	"github.com/vs-yuri-tsai/lights-out/internal/discovery"
	"github.com/vs-yuri-tsai/lights-out/internal/handlers"
	"github.com/vs-yuri-tsai/lights-out/internal/invocation"
	"github.com/vs-yuri-tsai/lights-out/internal/logging"
	"github.com/vs-yuri-tsai/lights-out/internal/model"
	"github.com/vs-yuri-tsai/lights-out/internal/orchestrator"
)

// configParameterNameEnv names the environment variable carrying the SSM
// parameter name the engine loads its configuration document from.
const configParameterNameEnv = "LIGHTS_OUT_CONFIG_PARAMETER"

// buildEngine wires the config loader, discovery service, and orchestrator
// together from a freshly loaded AWS config, the same way for both the
// Lambda handler and the local-invoke CLI.
func buildEngine(ctx context.Context) (*invocation.Engine, error) {
	environment := os.Getenv("LIGHTS_OUT_ENVIRONMENT")
	logging.Init(environment)

	parameterName := os.Getenv(configParameterNameEnv)
	if parameterName == "" {
		return nil, fmt.Errorf("%s is required", configParameterNameEnv)
	}

	awsCfg, err := awsutil.LoadDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	loader := config.NewLoader(ssm.NewFromConfig(awsCfg))
	discoverer := discovery.NewService(awsCfg, nil)

	newHandler := func(resource model.DiscoveredResource) (handlers.Handler, error) {
		cached, err := loader.Load(ctx, parameterName)
		if err != nil {
			return nil, err
		}
		return handlers.New(resource, awsCfg, cached.ResourceDefaults)
	}

	return &invocation.Engine{
		Loader:       loader,
		Orchestrator: orchestrator.New(discoverer, newHandler),
		ConfigName:   parameterName,
	}, nil
}
