package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "zero distance",
			lat1: 32.5149, lon1: -117.0382,
			lat2: 32.5149, lon2: -117.0382,
			expected:  0,
			tolerance: 0.001,
		},
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 1,
			expected:  111195,
			tolerance: 100,
		},
		{
			name: "tijuana to san diego",
			lat1: 32.5149, lon1: -117.0382,
			lat2: 32.7157, lon2: -117.1611,
			expected:  25000,
			tolerance: 1000,
		},
		{
			name: "short hop stays in meters",
			lat1: 32.5149, lon1: -117.0382,
			lat2: 32.51495, lon2: -117.0382,
			expected:  5.6,
			tolerance: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("Distance() = %.2f, want %.2f (±%.2f)", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "due north",
			lat1: 0, lon1: 0,
			lat2: 1, lon2: 0,
			expected:  0,
			tolerance: 0.1,
		},
		{
			name: "due east",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 1,
			expected:  90,
			tolerance: 0.1,
		},
		{
			name: "due south",
			lat1: 1, lon1: 0,
			lat2: 0, lon2: 0,
			expected:  180,
			tolerance: 0.1,
		},
		{
			name: "due west wraps into range",
			lat1: 0, lon1: 1,
			lat2: 0, lon2: 0,
			expected:  270,
			tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("Bearing() = %.2f, want %.2f", got, tt.expected)
			}
			if got < 0 || got >= 360 {
				t.Errorf("Bearing() = %.2f out of [0, 360)", got)
			}
		})
	}
}

func TestIsStationary(t *testing.T) {
	// about 5.6 meters apart
	lat1, lon1 := 32.5149, -117.0382
	lat2, lon2 := 32.51495, -117.0382

	if !IsStationary(lat1, lon1, lat2, lon2, 10) {
		t.Error("expected a sub-radius move to be stationary")
	}
	if IsStationary(lat1, lon1, lat2, lon2, 5) {
		t.Error("expected a move past the radius to count as movement")
	}
	if !IsStationary(lat1, lon1, lat1, lon1, 0) {
		t.Error("expected no move to be stationary at zero radius")
	}
}
