package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint(",", "prepare_dev", "APP001")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint(",", "prepare_dev", "APP001"))
	assert.NotEqual(t, a, Fingerprint(",", "APP001", "prepare_dev"))
	assert.NotEqual(t, a, Fingerprint(":", "prepare_dev", "APP001"))
}
