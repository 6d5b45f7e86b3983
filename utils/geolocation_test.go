package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	assert.Zero(t, DistanceKm(-6.2088, 106.8456, -6.2088, 106.8456))
}

func TestDistanceKmSymmetric(t *testing.T) {
	forward := DistanceKm(-6.2088, 106.8456, -6.9175, 107.6191)
	back := DistanceKm(-6.9175, 107.6191, -6.2088, 106.8456)
	assert.InDelta(t, forward, back, 1e-9)
}

func TestDistanceKmKnownPairs(t *testing.T) {
	// Jakarta to Bandung, roughly 116 km great-circle.
	d := DistanceKm(-6.2088, 106.8456, -6.9175, 107.6191)
	assert.InDelta(t, 116.0, d, 2.0)

	// One hundredth of a degree of latitude is about 1.11 km.
	short := DistanceKm(-6.2000, 106.8000, -6.2100, 106.8000)
	assert.InDelta(t, 1.11, short, 0.02)
}

func TestEstimateETAMinutes(t *testing.T) {
	tests := []struct {
		distanceKm float64
		want       int
	}{
		{0, 0},
		{40, 60},
		{10, 15},
		{1, 2},   // 1.5 minutes rounds up
		{0.3, 0}, // 0.45 minutes rounds down
		{2.5, 4}, // 3.75 minutes rounds up
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, EstimateETAMinutes(tc.distanceKm), "distance %.2f", tc.distanceKm)
	}
}

func TestIsValidCoordinate(t *testing.T) {
	require.True(t, IsValidCoordinate(0, 0))
	require.True(t, IsValidCoordinate(90, 180))
	require.True(t, IsValidCoordinate(-90, -180))

	assert.False(t, IsValidCoordinate(90.0001, 0))
	assert.False(t, IsValidCoordinate(-91, 0))
	assert.False(t, IsValidCoordinate(0, 180.5))
	assert.False(t, IsValidCoordinate(0, -181))
}
