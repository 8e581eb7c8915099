package main

import "errors"

// Failure taxonomy. Every invocation either succeeds or ends in exactly one
// of these conditions; the process boundary maps them to a message and a
// non-zero exit. Nothing is retried and nothing is swallowed.
var (
	// errConnection: the audio server session could not be established
	// (monitor tool missing, server not running).
	errConnection = errors.New("audio server connection failed")

	// errNoDefaultDevice: registry enumeration finished its bounded wait
	// without any device claiming the default sink role.
	errNoDefaultDevice = errors.New("no default output device")

	// errDecode: the device advertised parameters that violate the protocol
	// assumptions (no output route, no volume channels).
	errDecode = errors.New("parameter decode failed")

	// errMalformedInput: the request itself is invalid (unsigned delta,
	// unknown mute token). Caught before any server interaction.
	errMalformedInput = errors.New("malformed input")

	// errTimeout: a bounded wait elapsed. When it follows a dispatched
	// set-request the change may still have been applied server-side; callers
	// must treat this as "unconfirmed", not "definitely failed".
	errTimeout = errors.New("timed out waiting for server event")
)
