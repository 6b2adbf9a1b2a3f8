package validators

import (
	"testing"

	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/stretchr/testify/assert"
)

func TestCustomTags(t *testing.T) {
	type probe struct {
		Regions []string `validate:"dive,aws_region"`
		CIDR    *int     `validate:"omitempty,cidr_size"`
		AZs     *int     `validate:"omitempty,az_count"`
	}
	ok, bad := 24, 7

	assert.NoError(t, New().Struct(probe{Regions: []string{"us-east-1"}, CIDR: &ok}))
	assert.Error(t, New().Struct(probe{Regions: []string{"mars-1"}}))
	assert.Error(t, New().Struct(probe{CIDR: &bad}))
	assert.Error(t, New().Struct(probe{AZs: &bad}))
	assert.NoError(t, New().Struct(probe{}))
}

func TestRequestMetadataLevel(t *testing.T) {
	sample := onboarding.SampleInitializationRequest().Apps[0].Metadata
	assert.NoError(t, New().Struct(sample))

	sample.AWSRegions = []string{"us-east-1", "nowhere"}
	assert.Error(t, New().Struct(sample))

	empty := onboarding.RequestMetadata{}
	assert.NoError(t, New().Struct(empty))
}
