package geo

import "math"

const earthRadiusM = 6371000.0

// Distance returns the haversine distance in meters between two coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Bearing returns the initial compass bearing in degrees [0, 360) from the
// first coordinate to the second.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degreesToRadians(lat1)
	phi2 := degreesToRadians(lat2)
	dLon := degreesToRadians(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	deg := radiansToDegrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// IsStationary reports whether a move between two coordinates stays within
// the given radius in meters.
func IsStationary(lat1, lon1, lat2, lon2, radius float64) bool {
	return Distance(lat1, lon1, lat2, lon2) <= radius
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
