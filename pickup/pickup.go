// Package pickup locates the pickup centers near a visitor.
package pickup

import (
	"math"
	"sort"

	"goflare.io/storefront/models"
)

const (
	// EarthRadiusKm is the mean radius used by Distance.
	EarthRadiusKm = 6371.0
	// DefaultRadiusKm bounds Nearby when no radius is given.
	DefaultRadiusKm = 10.0
)

// DefaultOrigin is the map center used when the visitor shares no location (Colombo).
var DefaultOrigin = models.Location{Lat: 6.9271, Lng: 79.8612}

var centers = []models.PickupCenter{
	{ID: "CMB_CLB_001", Name: "Colombo - Colombo", District: "Colombo", Division: "Colombo", Coordinates: models.Location{Lat: 6.9271, Lng: 79.8612}, Address: "Colombo, Western Province"},
	{ID: "GPH_GPH_001", Name: "Gampaha - Gampaha", District: "Gampaha", Division: "Gampaha", Coordinates: models.Location{Lat: 7.4355, Lng: 80.0215}, Address: "Gampaha, Western Province"},
	{ID: "KLT_KLT_001", Name: "Kalutara - Kalutara", District: "Kalutara", Division: "Kalutara", Coordinates: models.Location{Lat: 6.5293, Lng: 80.0338}, Address: "Kalutara, Western Province"},
}

// Centers returns every known pickup center.
func Centers() []models.PickupCenter {
	out := make([]models.PickupCenter, len(centers))
	copy(out, centers)
	return out
}

// Distance returns the great-circle distance between a and b in kilometres (haversine).
func Distance(a, b models.Location) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Nearby returns the centers strictly closer than radiusKm to origin, nearest first.
// A non-positive radius means DefaultRadiusKm.
func Nearby(origin models.Location, radiusKm float64) []models.NearbyCenter {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	var out []models.NearbyCenter
	for _, c := range centers {
		d := Distance(origin, c.Coordinates)
		if d < radiusKm {
			out = append(out, models.NearbyCenter{PickupCenter: c, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
