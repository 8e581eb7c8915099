package main

import (
	"errors"
	"math"
	"testing"
)

func TestPercentageRoundTrip(t *testing.T) {
	for v := 0.0; v <= 1.0; v += 0.01 {
		got := percentageToLinear(toPercentage(v))
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("round trip of %v = %v, want within 1e-9", v, got)
		}
	}
}

func TestApplyRelativeClamps(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		delta   float64
		want    float64
	}{
		{"simple increase", 50, 2.5, 52.5},
		{"simple decrease", 50, -0.5, 49.5},
		{"clamped at ceiling", 99, 5, 100},
		{"clamped at floor", 1, -5, 0},
		{"huge delta clamped", 50, 1000, 100},
		{"huge negative delta clamped", 50, -1000, 0},
		{"zero delta", 37, 0, 37},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyRelative(tt.current, tt.delta); got != tt.want {
				t.Errorf("applyRelative(%v, %v) = %v, want %v", tt.current, tt.delta, got, tt.want)
			}
		})
	}
}

func TestPercentageToLinearClampsInput(t *testing.T) {
	if got := percentageToLinear(1000); got != 1.0 {
		t.Errorf("percentageToLinear(1000) = %v, want 1.0", got)
	}
	if got := percentageToLinear(-1); got != 0.0 {
		t.Errorf("percentageToLinear(-1) = %v, want 0.0", got)
	}
}

func TestParseDelta(t *testing.T) {
	tests := []struct {
		arg     string
		want    float64
		wantErr bool
	}{
		{"+2.5%", 2.5, false},
		{"-0.5%", -0.5, false},
		{"+1%", 1, false},
		{"-100%", -100, false},
		{"+0%", 0, false},
		{"2.5%", 0, true},  // missing sign
		{"+2.5", 0, true},  // missing percent
		{"%", 0, true},     // empty value
		{"+%", 0, true},    // sign only
		{"+abc%", 0, true}, // not a number
		{"+NaN%", 0, true}, // parses as a float but is not a percentage
		{"-nan%", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseDelta(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDelta(%q) succeeded, want error", tt.arg)
				}
				if !errors.Is(err, errMalformedInput) {
					t.Errorf("parseDelta(%q) error = %v, want errMalformedInput", tt.arg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDelta(%q) failed: %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("parseDelta(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestParseMuteTransition(t *testing.T) {
	for _, valid := range []string{"on", "off", "toggle"} {
		if _, err := parseMuteTransition(valid); err != nil {
			t.Errorf("parseMuteTransition(%q) failed: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "On", "true", "mute"} {
		_, err := parseMuteTransition(invalid)
		if !errors.Is(err, errMalformedInput) {
			t.Errorf("parseMuteTransition(%q) error = %v, want errMalformedInput", invalid, err)
		}
	}
}

func TestMuteTransitionApply(t *testing.T) {
	tests := []struct {
		transition muteTransition
		baseline   bool
		want       bool
	}{
		{muteOn, false, true},
		{muteOn, true, true},
		{muteOff, false, false},
		{muteOff, true, false},
		{muteToggle, false, true},
		{muteToggle, true, false},
	}
	for _, tt := range tests {
		if got := tt.transition.apply(tt.baseline); got != tt.want {
			t.Errorf("%s.apply(%v) = %v, want %v", tt.transition, tt.baseline, got, tt.want)
		}
	}
}

// Two consecutive toggles with no intervening change restore the original state.
func TestToggleIsInvolution(t *testing.T) {
	for _, baseline := range []bool{false, true} {
		if got := muteToggle.apply(muteToggle.apply(baseline)); got != baseline {
			t.Errorf("toggle(toggle(%v)) = %v, want %v", baseline, got, baseline)
		}
	}
}
