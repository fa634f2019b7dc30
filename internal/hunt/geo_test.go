package hunt

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	gate := Coord{Lat: 19.0760, Lng: 72.8777}

	tests := []struct {
		name    string
		a, b    Coord
		wantMin float64
		wantMax float64
	}{
		{"same point", gate, gate, 0, 0},
		{"one thousandth degree north", gate, Coord{Lat: 19.0770, Lng: 72.8777}, 111, 111.4},
		{"across town", gate, Coord{Lat: 19.0900, Lng: 72.8900}, 2000, 2100},
		{"missing latitude", Coord{Lng: 72.8777}, gate, math.Inf(1), math.Inf(1)},
		{"missing target", gate, Coord{}, math.Inf(1), math.Inf(1)},
		{"nan", Coord{Lat: math.NaN(), Lng: 72.8777}, gate, math.Inf(1), math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("Distance = %v, want in [%v, %v]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	points := []Coord{
		{Lat: 19.0760, Lng: 72.8777},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 51.5074, Lng: -0.1278},
	}
	for _, a := range points {
		for _, b := range points {
			if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-6 {
				t.Errorf("Distance(%v, %v) = %v but reverse = %v", a, b, d1, d2)
			}
		}
	}
}

func TestCoordFrom(t *testing.T) {
	lat := 19.0760
	if c := coordFrom(&lat, nil); c.Lat != lat || c.Lng != 0 {
		t.Errorf("coordFrom = %+v", c)
	}
	if !math.IsInf(Distance(coordFrom(nil, nil), Coord{Lat: 1, Lng: 1}), 1) {
		t.Error("nil coordinates must never be in range")
	}
}
