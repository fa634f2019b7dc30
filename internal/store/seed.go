package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playperu/treasurehunt/internal/hunt"
)

func coord(v float64) *float64 { return &v }

func dms(d, m, s float64) *float64 { return coord(d + m/60 + s/3600) }

// DemoLocations is the Colaba/Fort route the hunt was first run on.
func DemoLocations() []hunt.Location {
	return []hunt.Location{
		{Code: "CLG", Name: "College Start Point", Hint: "Every hunt begins where the bell rings. Scan at the college gate.", Lat: coord(18.92368888207889), Lng: coord(72.83244098149588)},
		{Code: "WESTSIDE", Name: "Westside", Hint: "Fashion faces the sunset on this side of town.", Lat: coord(18.9280036), Lng: coord(72.8309223)},
		{Code: "LION_GATE", Name: "Lion Gate", Hint: "Two stone guardians watch over the naval dockyard.", Lat: coord(18.926808), Lng: coord(72.833937)},
		{Code: "CSMVS", Name: "Chhatrapati Shivaji Maharaj Vastu Sangrahalaya", Hint: "A domed treasure house once named for a prince.", Lat: coord(18.9269037), Lng: coord(72.8326707)},
		{Code: "SOULED_STORE", Name: "The Souled Store", Hint: "Pop culture on a shirt, right on the causeway.", Lat: coord(18.9218242), Lng: coord(72.8309803)},
		{Code: "SUBWAY", Name: "Subway (near petrol pump)", Hint: "Eat fresh beside the fuel stop.", Lat: coord(18.9218242), Lng: coord(72.8309803)},
		{Code: "MOCHI", Name: "Mochi", Hint: "Shoes for every step of this hunt.", Lat: dms(18, 55, 16), Lng: dms(72, 49, 51)},
		{Code: "LINGS_PAVILION", Name: "Ling's Pavilion", Hint: "Dim sum behind the old Regal junction.", Lat: dms(18, 55, 25), Lng: dms(72, 49, 56)},
		{Code: "LEOPOLD_CAFE", Name: "Leopold Café", Hint: "Since 1871, a cafe every traveler knows.", Lat: dms(18, 55, 22), Lng: dms(72, 49, 54)},
		{Code: "STUDY_CENTRE", Name: "Study Centre", Hint: "Quiet desks where exams are won.", Lat: dms(18, 55, 33), Lng: dms(72, 49, 46)},
		{Code: "TAJ_HOTEL", Name: "Taj Hotel", Hint: "A palace facing the Gateway.", Lat: dms(18, 55, 17), Lng: dms(72, 49, 59)},
		{Code: "RADIO_CLUB", Name: "Radio Club Seaside", Hint: "Sea breeze and a jetty by the old club.", Lat: dms(18, 55, 5), Lng: dms(72, 49, 54)},
		{Code: "HOLY_NAME_SCHOOL", Name: "Holy Name High School", Hint: "A school named in faith, near the cathedral.", Lat: dms(18, 55, 22), Lng: dms(72, 49, 51)},
		{Code: "ELECTRIC_HOUSE", Name: "Electric House / Bus Station", Hint: "Red buses rest where the power company lives.", Lat: coord(18.9202778), Lng: coord(72.8305556)},
	}
}

// SeedLocations inserts locs when the locations table is empty.
// Idempotent: does nothing once any location exists.
func (s *Store) SeedLocations(ctx context.Context, logger *slog.Logger, locs []hunt.Location) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n); err != nil {
		return fmt.Errorf("counting locations: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, loc := range locs {
		if err := s.UpsertLocation(ctx, loc); err != nil {
			return fmt.Errorf("seeding %s: %w", loc.Code, err)
		}
	}
	logger.Info("locations seeded", "count", len(locs))
	return nil
}
