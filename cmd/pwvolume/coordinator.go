package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Operation coordinator. Drives the run loop through an explicit phase
// machine, one bounded wait per phase:
//
//	connecting -> resolving -> awaiting-baseline
//	  -> done                      (query)
//	  -> applying -> confirming -> done
//
// Any phase failing moves to failed with the corresponding error kind, and
// teardown runs on every path. The phase transitions themselves are pure;
// all side effects happen at the loop edges (RunUntil, setRoute).

// operation is the single pending request of an invocation, consumed once
// its effects are confirmed (or, for a query, once the baseline is read).
type operation interface {
	opMarker()
}

// queryOp reads and reports the current volume/mute state.
type queryOp struct{}

// changeOp adjusts the volume by a signed percentage delta, clamped.
type changeOp struct {
	Delta float64
}

// muteOp sets or toggles the mute flag.
type muteOp struct {
	Transition muteTransition
}

func (queryOp) opMarker()  {}
func (changeOp) opMarker() {}
func (muteOp) opMarker()   {}

type phase int

const (
	phaseConnecting phase = iota
	phaseResolving
	phaseBaseline
	phaseApplying
	phaseConfirming
	phaseDone
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseConnecting:
		return "connecting"
	case phaseResolving:
		return "resolving"
	case phaseBaseline:
		return "awaiting-baseline"
	case phaseApplying:
		return "applying"
	case phaseConfirming:
		return "awaiting-confirmation"
	case phaseDone:
		return "done"
	default:
		return "failed"
	}
}

type coordinator struct {
	conn     serverConn
	dispatch routeDispatcher
	reg      *registry
	timeout  time.Duration
	logger   *slog.Logger

	phase    phase
	target   target
	baseline VolumeState
	routeIdx int
}

func newCoordinator(conn serverConn, dispatch routeDispatcher, timeout time.Duration, logger *slog.Logger) *coordinator {
	return &coordinator{
		conn:     conn,
		dispatch: dispatch,
		reg:      newRegistry(),
		timeout:  timeout,
		logger:   logger,
		phase:    phaseConnecting,
	}
}

func (c *coordinator) enter(p phase) {
	c.logger.Debug("phase transition", "from", c.phase.String(), "to", p.String())
	c.phase = p
}

func (c *coordinator) fail(err error) error {
	c.enter(phaseFailed)
	return err
}

// run executes the pending operation to completion. The returned Status is
// non-nil only for queries.
func (c *coordinator) run(op operation) (*Status, error) {
	c.enter(phaseResolving)
	if err := c.resolveTarget(); err != nil {
		return nil, c.fail(err)
	}

	c.enter(phaseBaseline)
	if err := c.awaitBaseline(); err != nil {
		return nil, c.fail(err)
	}

	switch op := op.(type) {
	case queryOp:
		c.enter(phaseDone)
		st := newStatus(c.baseline)
		return &st, nil

	case changeOp:
		desired := VolumeState{
			Channels: make([]float64, len(c.baseline.Channels)),
			Muted:    c.baseline.Muted,
		}
		// All channels move in lock-step through the percentage domain.
		for i, ch := range c.baseline.Channels {
			desired.Channels[i] = percentageToLinear(applyRelative(toPercentage(ch), op.Delta))
		}
		return nil, c.applyAndConfirm(desired)

	case muteOp:
		desired := VolumeState{
			Channels: c.baseline.Channels,
			Muted:    op.Transition.apply(c.baseline.Muted),
		}
		return nil, c.applyAndConfirm(desired)

	default:
		return nil, c.fail(fmt.Errorf("%w: unknown operation %T", errMalformedInput, op))
	}
}

// resolveTarget enumerates registry batches until the default sink is
// identified. An elapsed wait means no device claimed the default role.
func (c *coordinator) resolveTarget() error {
	err := c.conn.RunUntil(c.timeout, func(b batch) bool {
		c.reg.ingest(b)
		t, ok := c.reg.resolve()
		if ok {
			c.target = t
		}
		return ok
	})
	if errors.Is(err, errTimeout) {
		return fmt.Errorf("%w: registry enumeration finished without a default sink", errNoDefaultDevice)
	}
	if err != nil {
		return err
	}
	c.logger.Debug("default sink resolved",
		"sink", c.reg.defaultSinkName,
		"node", c.target.NodeID,
		"device", c.target.DeviceID)
	return nil
}

// awaitBaseline waits for the first decodable parameter state of the target
// device. The batch that resolved the target frequently already carried it,
// so the registry is consulted before waiting for further events.
func (c *coordinator) awaitBaseline() error {
	decoded, err := c.tryBaseline()
	if err != nil || decoded {
		return err
	}

	waitErr := c.conn.RunUntil(c.timeout, func(b batch) bool {
		c.reg.ingest(b)
		decoded, err = c.tryBaseline()
		return decoded || err != nil
	})
	if err != nil {
		return err
	}
	if errors.Is(waitErr, errTimeout) {
		return fmt.Errorf("no parameter event for device %d: %w", c.target.DeviceID, waitErr)
	}
	return waitErr
}

func (c *coordinator) tryBaseline() (bool, error) {
	rt, ok := c.reg.outputRoute(c.target.DeviceID)
	if !ok {
		return false, nil
	}
	st, err := decodeRoute(rt)
	if err != nil {
		return false, err
	}
	c.baseline = st
	c.routeIdx = rt.Index
	c.logger.Debug("baseline read",
		"channels", len(st.Channels),
		"volume", st.Channels[0],
		"muted", st.Muted)
	return true, nil
}

// applyAndConfirm dispatches the set-request and waits for a parameter
// notification matching the intended state. On timeout the server-side
// outcome is unknown; that ambiguity is surfaced, never assumed away.
func (c *coordinator) applyAndConfirm(desired VolumeState) error {
	c.enter(phaseApplying)
	update := routeUpdate{
		Index:  c.routeIdx,
		Device: c.target.CardProfileDevice,
		Props: routeProps{
			Mute:           desired.Muted,
			ChannelVolumes: desired.Channels,
		},
	}
	if err := c.dispatch.setRoute(c.target.DeviceID, update); err != nil {
		return c.fail(err)
	}

	c.enter(phaseConfirming)
	if c.confirmed(desired) {
		// The request was a no-op (already at a clamp boundary, mute already
		// in the requested state); nothing further to wait for.
		c.enter(phaseDone)
		return nil
	}
	err := c.conn.RunUntil(c.timeout, func(b batch) bool {
		c.reg.ingest(b)
		return c.confirmed(desired)
	})
	if errors.Is(err, errTimeout) {
		return c.fail(fmt.Errorf("change dispatched but not confirmed (it may still have been applied): %w", errTimeout))
	}
	if err != nil {
		return c.fail(err)
	}
	c.enter(phaseDone)
	return nil
}

func (c *coordinator) confirmed(desired VolumeState) bool {
	rt, ok := c.reg.outputRoute(c.target.DeviceID)
	if !ok {
		return false
	}
	st, err := decodeRoute(rt)
	if err != nil {
		return false
	}
	return desired.matches(st)
}

// runSession drives the coordinator over an established session and
// guarantees teardown on every exit path, done and failed alike.
func runSession(conn serverConn, dispatch routeDispatcher, op operation, timeout time.Duration, logger *slog.Logger) (*Status, error) {
	defer conn.Close()
	return newCoordinator(conn, dispatch, timeout, logger).run(op)
}

// runOperation owns the full session lifecycle for one invocation:
// connect, act, disconnect.
func runOperation(ctx context.Context, cfg Config, op operation, logger *slog.Logger) (*Status, error) {
	conn, err := openMonitor(ctx, cfg.Tools, logger)
	if err != nil {
		return nil, err
	}

	dispatch := &cliDispatcher{
		bin:    cfg.Tools.CliBin,
		remote: cfg.Tools.Remote,
		logger: logger,
	}
	return runSession(conn, dispatch, op, cfg.stageTimeout(), logger)
}
