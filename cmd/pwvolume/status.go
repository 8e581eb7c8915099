package main

import (
	"encoding/json"
	"fmt"
	"math"
)

// Status is the machine-readable result of a query, shaped for status-bar
// consumption: a percentage, the mute flag, a human tooltip and an
// icon-selection class derived from the volume bucket and mute state.
type Status struct {
	Percentage float64 `json:"percentage"`
	Muted      bool    `json:"muted"`
	Tooltip    string  `json:"tooltip"`
	Class      string  `json:"class"`
}

// newStatus derives the reported state from the decoded baseline. All
// channels are kept in lock-step, so the first channel is representative.
func newStatus(st VolumeState) Status {
	pct := math.Round(toPercentage(st.Channels[0])*10) / 10

	s := Status{
		Percentage: pct,
		Muted:      st.Muted,
		Tooltip:    fmt.Sprintf("%v%%", pct),
		Class:      volumeClass(pct),
	}
	if st.Muted {
		s.Tooltip = "muted"
		s.Class = "muted"
	}
	return s
}

func volumeClass(pct float64) string {
	switch {
	case pct <= 33:
		return "low"
	case pct <= 66:
		return "medium"
	default:
		return "high"
	}
}

// render returns the status as a single JSON line for stdout.
func (s Status) render() (string, error) {
	out, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("render status: %w", err)
	}
	return string(out), nil
}
