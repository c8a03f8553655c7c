package facts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVerificationStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want VerificationStatus
	}{
		{"valid", VerificationVerified},
		{"VALID", VerificationVerified},
		{"Valid", VerificationVerified},
		{"invalid", VerificationInvalid},
		{"pending", VerificationPending},
		{"error", VerificationError},
		{"", VerificationError},
		{"unknown-vendor-token", VerificationError},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeVerificationStatus(tt.raw))
		})
	}
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		code string
		want State
	}{
		{"KA", StateKarnataka},
		{"ka", StateKarnataka},
		{"MH", StateMaharashtra},
		{"TG", StateTelangana},
		{"XX", StateOther},
		{"", StateOther},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeState(tt.code))
		})
	}
}

func TestNormalizeCustomerType(t *testing.T) {
	assert.Equal(t, CustomerPremium, NormalizeCustomerType("premium"))
	assert.Equal(t, CustomerPremium, NormalizeCustomerType("PREMIUM"))
	assert.Equal(t, CustomerGovernment, NormalizeCustomerType("government"))

	// Unrecognized segments default to retail, never error.
	assert.Equal(t, CustomerRetail, NormalizeCustomerType("smb"))
	assert.Equal(t, CustomerRetail, NormalizeCustomerType(""))
}

func TestNormalizeFetchStatus(t *testing.T) {
	assert.Equal(t, FetchSuccess, NormalizeFetchStatus("200"))
	assert.Equal(t, FetchNoHistory, NormalizeFetchStatus("404"))
	assert.Equal(t, FetchFailure, NormalizeFetchStatus("500"))
	assert.Equal(t, FetchTimeout, NormalizeFetchStatus("timeout"))

	// The table is authoritative: other HTTP-looking codes are failures.
	assert.Equal(t, FetchFailure, NormalizeFetchStatus("503"))
	assert.Equal(t, FetchFailure, NormalizeFetchStatus(""))
	assert.Equal(t, FetchFailure, NormalizeFetchStatus("TIMEOUT"))
}

func TestScalePercentage(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want float64
	}{
		{"zero", 0, 0.0},
		{"full", 100, 1.0},
		{"mid", 87.5, 0.875},
		{"above range clamps high", 150, 1.0},
		{"below range clamps low", -10, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScalePercentage(tt.pct), 1e-9)
		})
	}
}

func TestScalePercentageIdempotentAtBounds(t *testing.T) {
	// Clamped values stay put when clamped again.
	assert.Equal(t, 1.0, ScalePercentage(ScalePercentage(250)*100))
	assert.Equal(t, 0.0, ScalePercentage(ScalePercentage(-40)*100))
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before birthday", time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), 33},
		{"on birthday", time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), 34},
		{"day after birthday", time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC), 34},
		{"earlier month", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 33},
		{"later month", time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(birth, tt.now))
		})
	}
}
