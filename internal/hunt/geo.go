package hunt

import "math"

const earthRadiusKM = 6371

type Coord struct {
	Lat float64
	Lng float64
}

// Distance returns the haversine distance between a and b in meters.
// A zero or NaN component on either side yields +Inf so that missing GPS
// data can never pass a radius check.
func Distance(a, b Coord) float64 {
	if missing(a.Lat) || missing(a.Lng) || missing(b.Lat) || missing(b.Lng) {
		return math.Inf(1)
	}
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c * 1000
}

func missing(v float64) bool {
	return v == 0 || math.IsNaN(v)
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// coordFrom converts optional client coordinates, treating nil as missing.
func coordFrom(lat, lng *float64) Coord {
	var c Coord
	if lat != nil {
		c.Lat = *lat
	}
	if lng != nil {
		c.Lng = *lng
	}
	return c
}
