// Package validators configures the request validator with the onboarding
// option tables.
package validators

import (
	"slices"
	"sync"

	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// New returns the shared validator with the custom tags registered:
// aws_region, cidr_size and az_count.
func New() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("aws_region", func(fl validator.FieldLevel) bool {
			return slices.Contains(onboarding.AWSRegions, fl.Field().String())
		})
		_ = v.RegisterValidation("cidr_size", func(fl validator.FieldLevel) bool {
			return slices.Contains(onboarding.CIDRSizes, int(fl.Field().Int()))
		})
		_ = v.RegisterValidation("az_count", func(fl validator.FieldLevel) bool {
			return slices.Contains(onboarding.AZOptions, int(fl.Field().Int()))
		})
		v.RegisterStructValidation(requestMetadataLevel, onboarding.RequestMetadata{})
	})
	return v
}

// requestMetadataLevel checks a hand-edited payload against the option
// tables. Blank values are left to the completeness rules.
func requestMetadataLevel(sl validator.StructLevel) {
	m := sl.Current().Interface().(onboarding.RequestMetadata)
	for _, r := range m.AWSRegions {
		if !slices.Contains(onboarding.AWSRegions, r) {
			sl.ReportError(m.AWSRegions, "awsRegions", "AWSRegions", "aws_region", r)
		}
	}
	if m.CIDRSize != nil && !slices.Contains(onboarding.CIDRSizes, *m.CIDRSize) {
		sl.ReportError(*m.CIDRSize, "cidrSize", "CIDRSize", "cidr_size", "")
	}
	if m.NumberOfAZs != nil && !slices.Contains(onboarding.AZOptions, *m.NumberOfAZs) {
		sl.ReportError(*m.NumberOfAZs, "numberOfAzs", "NumberOfAZs", "az_count", "")
	}
}
