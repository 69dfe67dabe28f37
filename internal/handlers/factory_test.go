package handlers

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vs-yuri-tsai/lights-out/internal/model"
)

func TestNew_UnrecognizedResourceTypeReturnsNilNil(t *testing.T) {
	handler, err := New(model.DiscoveredResource{ResourceType: "ec2-instance"}, aws.Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, handler)
}
