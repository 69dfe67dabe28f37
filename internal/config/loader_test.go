package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParameterStore struct {
	value   string
	err     error
	calls   int
}

func (f *fakeParameterStore) GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{Value: aws.String(f.value)},
	}, nil
}

const validDoc = `
version: "1"
environment: staging
discovery:
  tags:
    lights-out: enabled
  resource_types:
    - ecs:service
`

func TestLoader_Load_ParsesAndValidates(t *testing.T) {
	store := &fakeParameterStore{value: validDoc}
	loader := NewLoader(store)

	cfg, err := loader.Load(context.Background(), "/lights-out/staging")
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "enabled", cfg.Discovery.Tags["lights-out"])
}

func TestLoader_Load_MemoizesByName(t *testing.T) {
	store := &fakeParameterStore{value: validDoc}
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), "/lights-out/staging")
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), "/lights-out/staging")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls, "second Load for the same name should be served from cache")
}

func TestLoader_ClearCache_ForcesRefetch(t *testing.T) {
	store := &fakeParameterStore{value: validDoc}
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), "/lights-out/staging")
	require.NoError(t, err)
	loader.ClearCache()
	_, err = loader.Load(context.Background(), "/lights-out/staging")
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls)
}

func TestLoader_Load_ParameterNotFound(t *testing.T) {
	store := &fakeParameterStore{err: &ssmtypes.ParameterNotFound{}}
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), "/missing")
	require.Error(t, err)
	var notFound *ParameterNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestLoader_Load_TransportError(t *testing.T) {
	store := &fakeParameterStore{err: errors.New("network blip")}
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), "/lights-out/staging")
	require.Error(t, err)
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestLoader_Load_EmptyValue(t *testing.T) {
	store := &fakeParameterStore{value: ""}
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), "/lights-out/staging")
	require.Error(t, err)
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestLoader_Load_ValidationMissingVersion(t *testing.T) {
	store := &fakeParameterStore{value: `
environment: staging
discovery:
  tags:
    lights-out: enabled
`}
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), "/lights-out/staging")
	require.Error(t, err)
	var validationErr *ConfigValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "version", validationErr.Field)
}

func TestLoader_Load_ValidationMissingDiscovery(t *testing.T) {
	store := &fakeParameterStore{value: `
version: "1"
environment: staging
`}
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), "/lights-out/staging")
	require.Error(t, err)
	var validationErr *ConfigValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "discovery", validationErr.Field)
}
