package pickup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goflare.io/storefront/models"
)

func TestDistance(t *testing.T) {
	assert.Zero(t, Distance(DefaultOrigin, DefaultOrigin))

	colombo := models.Location{Lat: 6.9271, Lng: 79.8612}
	gampaha := models.Location{Lat: 7.4355, Lng: 80.0215}
	d := Distance(colombo, gampaha)
	assert.InDelta(t, 59.2, d, 1.0)
	assert.InDelta(t, d, Distance(gampaha, colombo), 1e-9)

	// One degree of latitude along a meridian.
	assert.InDelta(t, 111.19, Distance(models.Location{Lat: 0, Lng: 0}, models.Location{Lat: 1, Lng: 0}), 0.01)
}

func TestNearby(t *testing.T) {
	got := Nearby(DefaultOrigin, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "CMB_CLB_001", got[0].ID)
	assert.Zero(t, got[0].DistanceKm)

	wide := Nearby(DefaultOrigin, 100)
	require.Len(t, wide, 3)
	for i := 1; i < len(wide); i++ {
		assert.LessOrEqual(t, wide[i-1].DistanceKm, wide[i].DistanceKm)
	}

	assert.Empty(t, Nearby(models.Location{Lat: 51.5074, Lng: -0.1278}, 10))
}

func TestCenters_ReturnsCopy(t *testing.T) {
	c := Centers()
	c[0].Name = "changed"
	assert.Equal(t, "Colombo - Colombo", Centers()[0].Name)
}
