// Package hunt holds the treasure hunt rules: scan validation, progression,
// ranking and the leaderboard projection. Persistence is reached through the
// Store interface; everything else here is plain Go.
package hunt

import "time"

// Result is the outcome persisted with every scan attempt.
type Result string

const (
	ResultSuccess  Result = "SUCCESS"
	ResultFail     Result = "FAIL"
	ResultRejected Result = "REJECTED"
)

type Team struct {
	ID                 string
	Name               string
	Members            []string
	AssignedLocation   string
	RegisteredDeviceID string
	Disqualified       bool
	CreatedAt          time.Time
}

// ScanEvent is an immutable record of one scan attempt.
type ScanEvent struct {
	ID             string
	TeamID         string
	TeamName       string
	LocationCode   string
	DeviceID       string
	Lat            *float64
	Lng            *float64
	Result         Result
	AdminNote      string
	DistanceMeters *float64
	ScannedAt      time.Time
}

type Location struct {
	Code string
	Name string
	Hint string
	Lat  *float64
	Lng  *float64
}

// Coord returns the stored target coordinates, if the location has any.
func (l Location) Coord() (Coord, bool) {
	if l.Lat == nil || l.Lng == nil {
		return Coord{}, false
	}
	return Coord{Lat: *l.Lat, Lng: *l.Lng}, true
}

type BannedDevice struct {
	DeviceID string
	Reason   string
	BannedAt time.Time
}
