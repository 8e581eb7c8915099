package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Parameter client: decoding the device's Route parameter into VolumeState
// and encoding set-requests back to the server. Set-requests are
// fire-and-forget; confirmation arrives later as a parameter-change
// notification on the monitor stream.

// routeProps is the settable slice of a device route's parameter blob.
type routeProps struct {
	Mute           bool      `json:"mute"`
	VolumeBase     float64   `json:"volumeBase,omitempty"`
	ChannelVolumes []float64 `json:"channelVolumes"`
}

// VolumeState is the decoded volume/mute state of the target device.
// Channels are linear per-channel values in [0, 1], kept in lock-step.
type VolumeState struct {
	Channels []float64
	Muted    bool
}

// decodeRoute validates a route's parameter blob and extracts VolumeState.
func decodeRoute(rt deviceRoute) (VolumeState, error) {
	if rt.Props == nil {
		return VolumeState{}, fmt.Errorf("%w: route %d has no props", errDecode, rt.Index)
	}
	if len(rt.Props.ChannelVolumes) == 0 {
		return VolumeState{}, fmt.Errorf("%w: route %d has no volume channels", errDecode, rt.Index)
	}
	return VolumeState{
		Channels: rt.Props.ChannelVolumes,
		Muted:    rt.Props.Mute,
	}, nil
}

// matches reports whether an observed state confirms the intended one.
// Channel volumes compare within epsilon because the server may round-trip
// them through device-specific scales; mute compares exactly.
const confirmEpsilon = 1e-4

func (s VolumeState) matches(observed VolumeState) bool {
	if s.Muted != observed.Muted || len(s.Channels) != len(observed.Channels) {
		return false
	}
	for i, v := range s.Channels {
		if math.Abs(v-observed.Channels[i]) > confirmEpsilon {
			return false
		}
	}
	return true
}

// routeUpdate is the set-request payload for a device route.
type routeUpdate struct {
	Index  int        `json:"index"`
	Device int        `json:"device"`
	Props  routeProps `json:"props"`
}

// routeDispatcher dispatches a set-request for the given device.
// Implementations must not wait for the change to take effect.
type routeDispatcher interface {
	setRoute(deviceID int, update routeUpdate) error
}

// cliDispatcher sends set-requests through the pw-cli set-param verb.
type cliDispatcher struct {
	bin    string
	remote string
	logger *slog.Logger
}

func (d *cliDispatcher) setRoute(deviceID int, update routeUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode route update: %w", err)
	}

	args := []string{}
	if d.remote != "" {
		args = append(args, "--remote", d.remote)
	}
	args = append(args, "set-param", strconv.Itoa(deviceID), "Route", string(payload))

	d.logger.Debug("dispatching set-request", "device", deviceID, "payload", string(payload))

	cmd := exec.Command(d.bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s set-param: %w: %s", d.bin, err, msg)
		}
		return fmt.Errorf("%s set-param: %w", d.bin, err)
	}
	return nil
}
