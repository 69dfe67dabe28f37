// Package config loads, parses, and validates the versioned configuration
// document that describes discovery scope and per-resource-type policy. The
// document is fetched from AWS Systems Manager Parameter Store and
// memoised in-process for the lifetime of the Lambda execution environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"gopkg.in/yaml.v3"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

// ParameterStore is the narrow surface of ssm.Client the loader depends on.
type ParameterStore interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Loader fetches, parses, validates, and memoises Config documents by
// parameter name.
type Loader struct {
	store ParameterStore

	mu    sync.Mutex
	cache map[string]*model.Config
}

// NewLoader returns a Loader backed by store.
func NewLoader(store ParameterStore) *Loader {
	return &Loader{
		store: store,
		cache: make(map[string]*model.Config),
	}
}

// Load returns the validated Config for name, fetching and parsing it on
// the first call and serving the cached value thereafter.
func (l *Loader) Load(ctx context.Context, name string) (*model.Config, error) {
	l.mu.Lock()
	if cached, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	cfg, err := l.fetchAndValidate(ctx, name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = cfg
	l.mu.Unlock()

	return cfg, nil
}

// ClearCache forces the next Load for any parameter name to re-fetch.
// Exposed for tests.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*model.Config)
}

func (l *Loader) fetchAndValidate(ctx context.Context, name string) (*model.Config, error) {
	out, err := l.store.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return nil, &ParameterNotFound{Name: name}
		}
		return nil, &ConfigError{Name: name, Err: err}
	}

	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return nil, &ConfigError{Name: name, Err: fmt.Errorf("parameter value is empty")}
	}

	raw := aws.ToString(out.Parameter.Value)

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &ConfigError{Name: name, Err: fmt.Errorf("parse document: %w", err)}
	}

	var cfg model.Config
	if err := yaml.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, &ConfigError{Name: name, Err: fmt.Errorf("decode document: %w", err)}
	}
	cfg.RawDocument = doc

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks the required top-level fields named in spec.md §3.
func validate(cfg *model.Config) error {
	if cfg.Version == "" {
		return &ConfigValidationError{Field: "version", Reason: "required field is missing"}
	}
	if cfg.Environment == "" {
		return &ConfigValidationError{Field: "environment", Reason: "required field is missing"}
	}
	if cfg.Discovery.Tags == nil && len(cfg.Discovery.ResourceTypes) == 0 {
		return &ConfigValidationError{Field: "discovery", Reason: "required field is missing"}
	}
	return nil
}
