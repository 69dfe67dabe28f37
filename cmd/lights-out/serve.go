package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vs-yuri-tsai/lights-out/internal/invocation"
)

// engineOnce builds the engine once per Lambda execution environment
// (cold start) and reuses it across warm invocations, so the config
// loader's memoised cache actually survives between invocations.
var (
	engineOnce sync.Once
	engine     *invocation.Engine
	engineErr  error
)

var serveCmd = &cobra.Command{
	Use:    "serve",
	Short:  "Run as an AWS Lambda handler (the default entrypoint when deployed)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		lambda.Start(handleRequest)
		return nil
	},
}

// handleRequest is the Lambda handler. It builds the engine once per cold
// start (via engineOnce) and reuses it, config loader cache included,
// across warm invocations, then delegates to invocation.Engine.
func handleRequest(ctx context.Context, payload invocation.Payload) (json.RawMessage, error) {
	engineOnce.Do(func() {
		engine, engineErr = buildEngine(ctx)
	})
	if engineErr != nil {
		return nil, engineErr
	}

	requestID := ""
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		requestID = lc.AwsRequestID
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result, err := engine.Invoke(ctx, requestID, payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}
