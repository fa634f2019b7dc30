package hunt

import (
	"errors"
	"fmt"
	"time"
)

// PoolPolicy selects how the next waypoint is drawn after a successful scan.
type PoolPolicy string

const (
	// PoolUnrestricted draws from every location except the start waypoint
	// and the one just scanned.
	PoolUnrestricted PoolPolicy = "unrestricted"
	// PoolCurated draws from an allow-list, never repeating a visited
	// waypoint. An exhausted list finishes the team early.
	PoolCurated PoolPolicy = "curated"
)

// Metric orders finished teams.
type Metric string

const (
	MetricDuration   Metric = "duration"
	MetricFinishTime Metric = "finish_time"
)

// Rules is the policy set the engine runs with.
type Rules struct {
	StartLocation  string
	FinishLocation string
	TargetScans    int

	MaxDistanceMeters   float64
	GPSFailDisqualifies bool

	TimeLimit             time.Duration
	TimeLimitDisqualifies bool

	EnforceSequence bool
	// StrikeLimit disqualifies a team on its Nth wrong-waypoint scan.
	// Zero means wrong scans only warn.
	StrikeLimit int

	Pool             PoolPolicy
	CuratedLocations []string
	Metric           Metric

	// EnableCompass exposes target coordinates in the team status.
	EnableCompass bool
}

func DefaultRules() Rules {
	return Rules{
		StartLocation:         "CLG",
		FinishLocation:        "COMPLETED",
		TargetScans:           5,
		MaxDistanceMeters:     25,
		TimeLimit:             2 * time.Hour,
		TimeLimitDisqualifies: true,
		EnforceSequence:       true,
		Pool:                  PoolCurated,
		Metric:                MetricDuration,
	}
}

func (r Rules) Validate() error {
	var errs []error
	if r.StartLocation == "" {
		errs = append(errs, errors.New("start location is required"))
	}
	if r.FinishLocation == "" {
		errs = append(errs, errors.New("finish location is required"))
	}
	if r.StartLocation != "" && r.StartLocation == r.FinishLocation {
		errs = append(errs, errors.New("start and finish locations must differ"))
	}
	if r.TargetScans < 1 {
		errs = append(errs, fmt.Errorf("target scans must be positive, got %d", r.TargetScans))
	}
	if r.MaxDistanceMeters <= 0 {
		errs = append(errs, fmt.Errorf("max distance must be positive, got %v", r.MaxDistanceMeters))
	}
	if r.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("time limit must not be negative, got %s", r.TimeLimit))
	}
	if r.StrikeLimit < 0 {
		errs = append(errs, fmt.Errorf("strike limit must not be negative, got %d", r.StrikeLimit))
	}
	switch r.Pool {
	case PoolCurated, PoolUnrestricted:
	default:
		errs = append(errs, fmt.Errorf("unknown pool policy %q", r.Pool))
	}
	switch r.Metric {
	case MetricDuration, MetricFinishTime:
	default:
		errs = append(errs, fmt.Errorf("unknown ranking metric %q", r.Metric))
	}
	return errors.Join(errs...)
}
