package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Volume arithmetic. Everything in this file is pure: the server's linear
// [0.0, 1.0] scale maps to a human-facing percentage by direct scaling, no
// perceptual curve, so read-modify-write round-trips are exact.

const (
	minPercent = 0.0
	maxPercent = 100.0
)

// toPercentage maps a linear channel volume to a percentage.
func toPercentage(linear float64) float64 {
	return linear * 100.0
}

// percentageToLinear is the inverse of toPercentage. Input is clamped to
// [0, 100] first so the encoded parameter is always within the server's
// valid range, even for adversarial deltas like +1000%.
func percentageToLinear(p float64) float64 {
	return clampPercent(p) / 100.0
}

// applyRelative adds a signed percentage delta and clamps to [0, 100].
func applyRelative(current, delta float64) float64 {
	return clampPercent(current + delta)
}

func clampPercent(p float64) float64 {
	if p < minPercent {
		return minPercent
	}
	if p > maxPercent {
		return maxPercent
	}
	return p
}

// parseDelta parses a relative volume adjustment of the form "+2.5%" or
// "-0.5%". The leading sign and the trailing '%' are both mandatory: a bare
// "2.5%" is rejected so that an accidental argument can never be mistaken
// for an intentional adjustment.
func parseDelta(arg string) (float64, error) {
	val, ok := strings.CutSuffix(arg, "%")
	if !ok {
		return 0, fmt.Errorf("%w: %q is missing the '%%' suffix", errMalformedInput, arg)
	}
	if !strings.HasPrefix(val, "+") && !strings.HasPrefix(val, "-") {
		return 0, fmt.Errorf("%w: %q must carry an explicit '+' or '-' sign", errMalformedInput, arg)
	}
	delta, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(delta) {
		return 0, fmt.Errorf("%w: %q is not a decimal percentage", errMalformedInput, arg)
	}
	return delta, nil
}

// muteTransition is a requested mute mutation.
type muteTransition string

const (
	muteOn     muteTransition = "on"
	muteOff    muteTransition = "off"
	muteToggle muteTransition = "toggle"
)

// parseMuteTransition validates a mute subcommand argument.
func parseMuteTransition(arg string) (muteTransition, error) {
	switch muteTransition(arg) {
	case muteOn, muteOff, muteToggle:
		return muteTransition(arg), nil
	default:
		return "", fmt.Errorf("%w: mute transition must be on, off or toggle, got %q", errMalformedInput, arg)
	}
}

// apply resolves the transition against the observed baseline mute flag.
// Toggle is only meaningful relative to a successfully read baseline; the
// coordinator guarantees one exists before this is called.
func (t muteTransition) apply(baseline bool) bool {
	switch t {
	case muteOn:
		return true
	case muteOff:
		return false
	default:
		return !baseline
	}
}
