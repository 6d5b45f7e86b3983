package services

import (
	"context"
	"sort"
	"taclink/interfaces"
	"taclink/models"
	"taclink/utils"
)

// DefaultSearchRadiusKm bounds the nearest-unit search.
const DefaultSearchRadiusKm = 5.0

// MatcherService ranks eligible units by straight-line distance from
// an emergency. Its output is advisory: it feeds assignment UI and
// ETA estimates but never restricts which unit command may assign.
type MatcherService struct {
	units interfaces.UnitStore
}

func NewMatcherService(units interfaces.UnitStore) *MatcherService {
	return &MatcherService{units: units}
}

// FindEligible returns online, available units within radiusKm of the
// origin, excluding excludeUnitID, sorted ascending by distance with
// ties broken by unit identifier. A non-positive radius falls back to
// DefaultSearchRadiusKm.
func (ms *MatcherService) FindEligible(ctx context.Context, originLat, originLon float64, excludeUnitID string, radiusKm float64) ([]models.NearbyUnit, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}

	units, err := ms.units.ListOnline(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]models.NearbyUnit, 0, len(units))
	for _, unit := range units {
		if unit.Status != models.UnitStatusAvailable {
			continue
		}
		if unit.UnitID == excludeUnitID {
			continue
		}

		distance := utils.DistanceKm(originLat, originLon, unit.Position.Latitude, unit.Position.Longitude)
		if distance > radiusKm {
			continue
		}

		nearby = append(nearby, models.NearbyUnit{
			UnitID:     unit.UnitID,
			UnitType:   unit.UnitType,
			Position:   unit.Position,
			DistanceKm: distance,
			ETAMinutes: utils.EstimateETAMinutes(distance),
		})
	}

	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].UnitID < nearby[j].UnitID
	})

	return nearby, nil
}
