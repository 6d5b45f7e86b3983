package services

import (
	"context"
	"taclink/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitAt(unitID, unitType, status string, online bool, lat, lon float64) models.Unit {
	return models.Unit{
		UnitID:   unitID,
		UnitType: unitType,
		Status:   status,
		IsOnline: online,
		Position: models.Position{Latitude: lat, Longitude: lon},
	}
}

func TestFindEligibleFiltersAndSorts(t *testing.T) {
	// Origin in central Jakarta; one degree of latitude is ~111 km, so
	// 0.01 degrees is roughly 1.1 km.
	originLat, originLon := -6.2000, 106.8000

	store := newFakeUnitStore(
		unitAt("RESCUE-02", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2100, 106.8000),  // ~1.1 km
		unitAt("RESCUE-01", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2040, 106.8000),  // ~0.44 km
		unitAt("FIRE-01", models.UnitTypeFire, models.UnitStatusBusy, true, -6.2010, 106.8000),           // busy
		unitAt("AMBO-01", models.UnitTypeAmbulance, models.UnitStatusAvailable, false, -6.2010, 106.8000), // offline
		unitAt("POLICE-01", models.UnitTypePolice, models.UnitStatusAvailable, true, -6.3000, 106.8000),  // ~11 km, out of range
	)

	matcher := NewMatcherService(store)

	nearby, err := matcher.FindEligible(context.Background(), originLat, originLon, "", DefaultSearchRadiusKm)
	require.NoError(t, err)

	require.Len(t, nearby, 2)
	assert.Equal(t, "RESCUE-01", nearby[0].UnitID)
	assert.Equal(t, "RESCUE-02", nearby[1].UnitID)
	assert.Less(t, nearby[0].DistanceKm, nearby[1].DistanceKm)

	for _, n := range nearby {
		assert.LessOrEqual(t, n.DistanceKm, DefaultSearchRadiusKm)
		assert.GreaterOrEqual(t, n.ETAMinutes, 1)
	}
}

func TestFindEligibleExcludesNamedUnit(t *testing.T) {
	store := newFakeUnitStore(
		unitAt("RESCUE-01", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2040, 106.8000),
		unitAt("RESCUE-02", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2050, 106.8000),
	)

	matcher := NewMatcherService(store)

	nearby, err := matcher.FindEligible(context.Background(), -6.2000, 106.8000, "RESCUE-01", DefaultSearchRadiusKm)
	require.NoError(t, err)

	require.Len(t, nearby, 1)
	assert.Equal(t, "RESCUE-02", nearby[0].UnitID)
}

func TestFindEligibleDefaultRadius(t *testing.T) {
	store := newFakeUnitStore(
		unitAt("RESCUE-01", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2040, 106.8000), // ~0.44 km
		unitAt("POLICE-01", models.UnitTypePolice, models.UnitStatusAvailable, true, -6.2700, 106.8000), // ~7.8 km
	)

	matcher := NewMatcherService(store)

	// Non-positive radius falls back to the default 5 km.
	nearby, err := matcher.FindEligible(context.Background(), -6.2000, 106.8000, "", 0)
	require.NoError(t, err)

	require.Len(t, nearby, 1)
	assert.Equal(t, "RESCUE-01", nearby[0].UnitID)
}

func TestFindEligibleTieBreaksByUnitID(t *testing.T) {
	// Two units at the exact same spot.
	store := newFakeUnitStore(
		unitAt("RESCUE-02", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2040, 106.8000),
		unitAt("RESCUE-01", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2040, 106.8000),
	)

	matcher := NewMatcherService(store)

	nearby, err := matcher.FindEligible(context.Background(), -6.2000, 106.8000, "", DefaultSearchRadiusKm)
	require.NoError(t, err)

	require.Len(t, nearby, 2)
	assert.Equal(t, "RESCUE-01", nearby[0].UnitID)
	assert.Equal(t, "RESCUE-02", nearby[1].UnitID)
}

func TestFindEligibleNearVersusFar(t *testing.T) {
	// One unit inside the default radius at about 1.2 km, one well
	// outside at about 8 km.
	store := newFakeUnitStore(
		unitAt("RESCUE-01", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2108, 106.8000),
		unitAt("RESCUE-02", models.UnitTypeRescue, models.UnitStatusAvailable, true, -6.2720, 106.8000),
	)

	matcher := NewMatcherService(store)

	nearby, err := matcher.FindEligible(context.Background(), -6.2000, 106.8000, "", DefaultSearchRadiusKm)
	require.NoError(t, err)

	require.Len(t, nearby, 1)
	assert.Equal(t, "RESCUE-01", nearby[0].UnitID)
	assert.InDelta(t, 1.2, nearby[0].DistanceKm, 0.05)
	assert.Equal(t, 2, nearby[0].ETAMinutes)
}

func TestFindEligibleEmptyPool(t *testing.T) {
	matcher := NewMatcherService(newFakeUnitStore())

	nearby, err := matcher.FindEligible(context.Background(), -6.2000, 106.8000, "", DefaultSearchRadiusKm)
	require.NoError(t, err)
	assert.Empty(t, nearby)
}
