package hunt

import (
	"context"
	"time"
)

// Store is the persistence the engine needs. Implementations must make
// BindDevice and RecordStrike atomic with respect to concurrent scans.
type Store interface {
	CreateTeam(ctx context.Context, t Team) error
	Team(ctx context.Context, teamID string) (Team, error)
	TeamByName(ctx context.Context, name string) (Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	DeleteTeam(ctx context.Context, teamID string) error

	// BindDevice binds deviceID if the team has no device yet and returns
	// whichever device is bound afterwards.
	BindDevice(ctx context.Context, teamID, deviceID string) (string, error)
	SetDisqualified(ctx context.Context, teamID string, disqualified bool) error
	SetAssignedLocation(ctx context.Context, teamID, code string) error
	// ResetTeam deletes the team's scans, unbinds its device, requalifies it
	// and assigns code.
	ResetTeam(ctx context.Context, teamID, code string) error

	InsertScan(ctx context.Context, ev ScanEvent) error
	// RecordStrike inserts a FAIL event and returns the team's FAIL count
	// including it, in one transaction.
	RecordStrike(ctx context.Context, ev ScanEvent) (int, error)
	// FirstSuccessAt returns the earliest SUCCESS scan time of the team at code.
	FirstSuccessAt(ctx context.Context, teamID, code string) (time.Time, bool, error)
	TeamSuccesses(ctx context.Context, teamID string) ([]ScanEvent, error)
	Successes(ctx context.Context) ([]ScanEvent, error)

	Location(ctx context.Context, code string) (Location, error)
	ListLocations(ctx context.Context) ([]Location, error)

	IsBanned(ctx context.Context, deviceID string) (bool, error)
	BanDevice(ctx context.Context, b BannedDevice) error
}
