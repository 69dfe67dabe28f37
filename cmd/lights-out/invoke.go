package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vs-yuri-tsai/lights-out/internal/invocation"
)

var (
	invokeAction        string
	invokeTargetGroup   string
	invokeDryRun        bool
	invokeTriggerSource string
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run one invocation locally against live AWS credentials",
	Long:  `invoke builds the same engine the Lambda handler runs and executes it once, printing the response envelope to stdout. Useful for dry-running a configuration change before a scheduled invocation picks it up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		eng, err := buildEngine(ctx)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		payload := invocation.Payload{
			Action:        invokeAction,
			TargetGroup:   invokeTargetGroup,
			DryRun:        invokeDryRun,
			TriggerSource: invokeTriggerSource,
		}

		result, err := eng.Invoke(ctx, uuid.New().String(), payload)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	invokeCmd.Flags().StringVar(&invokeAction, "action", "status", `one of "start", "stop", "status", "discover"`)
	invokeCmd.Flags().StringVar(&invokeTargetGroup, "target-group", "", "restrict to resources tagged with this lights-out:group value")
	invokeCmd.Flags().BoolVar(&invokeDryRun, "dry-run", false, "for start/stop, read status instead of mutating anything")
	invokeCmd.Flags().StringVar(&invokeTriggerSource, "trigger-source", "manual-invoke", "attached to each HandlerResult.triggerSource")
}
