package awsutil

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
)

func TestForRegion_ScopesRegionWithoutMutatingInput(t *testing.T) {
	base := aws.Config{Region: "us-east-1"}
	scoped := ForRegion(base, "eu-west-1")

	assert.Equal(t, "eu-west-1", scoped.Region)
	assert.Equal(t, "us-east-1", base.Region, "ForRegion must not mutate its input")
}
