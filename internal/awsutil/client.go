// Package awsutil builds the aws.Config values that discovery and the
// resource-type handlers construct their SDK clients from. It is the single
// place those configs are loaded and scoped to a region, and the single
// place a non-default retry policy would be layered in.
package awsutil

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// ConfigLoader is the function shape of LoadDefault: it loads the base
// aws.Config used to derive every per-region, per-service client. No caller
// in this module takes one; buildEngine calls LoadDefault directly.
type ConfigLoader func(ctx context.Context) (aws.Config, error)

// LoadDefault loads the ambient AWS configuration (environment, shared
// config files, or the Lambda execution role) with the SDK's standard
// retryer. No custom backoff is layered on top of it — see DESIGN.md for
// why the SDK default suffices here.
func LoadDefault(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load default AWS config: %w", err)
	}
	return cfg, nil
}

// ForRegion returns a copy of cfg scoped to region. handlers.New calls this
// once per resource with the region derived from ARN segment 3, and
// discovery calls it once per queried region, so each cloud-API client only
// ever talks to one region.
func ForRegion(cfg aws.Config, region string) aws.Config {
	scoped := cfg.Copy()
	scoped.Region = region
	return scoped
}
