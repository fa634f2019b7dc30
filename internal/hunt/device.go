package hunt

import (
	"context"
	"log/slog"
)

// Admin notes attached to rejected scans.
const (
	noteBannedDevice       = "Banned Device"
	noteUnauthorizedDevice = "Unauthorized Device"
)

// DeviceGuard enforces the device ban list and one-device-per-team binding.
type DeviceGuard struct {
	store  Store
	logger *slog.Logger
	record func(ctx context.Context, ev ScanEvent) error
}

func NewDeviceGuard(store Store, logger *slog.Logger) *DeviceGuard {
	return &DeviceGuard{store: store, logger: logger, record: store.InsertScan}
}

// IsBanned reports whether any ban exists for deviceID.
func (g *DeviceGuard) IsBanned(ctx context.Context, deviceID string) (bool, error) {
	banned, err := g.store.IsBanned(ctx, deviceID)
	if err != nil {
		return false, internal("checking device ban", err)
	}
	return banned, nil
}

// BindOrVerify binds ev.DeviceID to team on first use. A scan from any other
// device afterwards is recorded as REJECTED and fails with KindForbidden.
func (g *DeviceGuard) BindOrVerify(ctx context.Context, team *Team, ev ScanEvent) error {
	if team.RegisteredDeviceID == "" {
		bound, err := g.store.BindDevice(ctx, team.ID, ev.DeviceID)
		if err != nil {
			return internal("binding device", err)
		}
		if bound == ev.DeviceID {
			g.logger.Info("device bound", "team_id", team.ID, "device_id", ev.DeviceID)
			team.RegisteredDeviceID = bound
			return nil
		}
		// Lost the race to another device.
		team.RegisteredDeviceID = bound
	}
	if team.RegisteredDeviceID == ev.DeviceID {
		return nil
	}

	ev.Result = ResultRejected
	ev.AdminNote = noteUnauthorizedDevice
	if err := g.record(ctx, ev); err != nil {
		return internal("recording rejected scan", err)
	}
	g.logger.Warn("unauthorized device", "team_id", team.ID, "device_id", ev.DeviceID)
	return forbidden(noteUnauthorizedDevice)
}
