package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApproximate(t *testing.T) {
	berlin := Point{Lat: 52.5200, Lon: 13.4050}
	hamburg := Point{Lat: 53.5511, Lon: 9.9937}

	got := Approximate(berlin, hamburg)

	assert.Equal(t, SourceApprox, got.Source)
	// Great-circle Berlin-Hamburg is ~255 km; the road factor inflates it.
	assert.InDelta(t, 255*1.25, got.Km, 15)
}

func TestApproximate_MinimumDistance(t *testing.T) {
	a := Point{Lat: 52.5200, Lon: 13.4050}
	b := Point{Lat: 52.5201, Lon: 13.4051}

	got := Approximate(a, b)

	assert.Equal(t, float64(3), got.Km)
}

func TestApproximate_SamePoint(t *testing.T) {
	p := Point{Lat: 48.1351, Lon: 11.5820}
	assert.Equal(t, float64(3), Approximate(p, p).Km)
}
