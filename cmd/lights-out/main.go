// Command lights-out is the serverless entrypoint for the cost-optimization
// orchestration engine: stopped/started on a cron schedule, it discovers
// tagged AWS resources and drives each through a start, stop, or status
// transition. Invoked either as an AWS Lambda function or, for local
// testing, through the "invoke" subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "lights-out",
	Short: "Scheduled cost-optimization orchestration engine",
	Long:  `lights-out stops and starts tagged ECS services, RDS instances, Aurora clusters, and EC2 autoscaling groups on a cron-triggered invocation.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lights-out %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
