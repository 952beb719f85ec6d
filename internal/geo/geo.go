package geo

import "math"

// Reference point attendance proximity is measured against, and the radius
// inside which a device counts as on-site. Both are compiled in, matching the
// deployment this agent serves.
const (
	ReferenceLatitude  = 8.79288
	ReferenceLongitude = 78.12069
	RadiusMeters       = 1000.0

	earthRadiusMeters = 6371.0 * 1000
)

// Distance returns the great-circle distance in meters between two points
// given in decimal degrees, using the haversine formula. Coincident points
// yield exactly zero.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	a := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinRadius reports whether the point lies strictly inside the geofence.
// A point at exactly RadiusMeters is outside.
func WithinRadius(lat, lon float64) bool {
	return Distance(lat, lon, ReferenceLatitude, ReferenceLongitude) < RadiusMeters
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
