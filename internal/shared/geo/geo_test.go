package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineQuarterCircle(t *testing.T) {
	// (0,0) to (0,90) is a quarter of the equator.
	d := HaversineM(0, 0, 0, 90)
	want := math.Pi / 2 * EarthRadiusM
	if math.Abs(d-want) > 1 {
		t.Fatalf("expected %v, got %v", want, d)
	}
}

func TestHaversineZero(t *testing.T) {
	if d := HaversineM(47.5, 8.2, 47.5, 8.2); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestHaversineAntimeridian(t *testing.T) {
	// Crossing the date line: 179.9E to 179.9W is ~22 km at the equator,
	// even though the raw longitude delta is 359.8 degrees.
	d := HaversineM(0, 179.9, 0, -179.9)
	if d < 20000 || d > 25000 {
		t.Fatalf("unexpected antimeridian distance: %v", d)
	}
}
