package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// Connection manager. The server session is a pw-dump monitor child process:
// its stdout carries a stream of JSON batches, where the leading batches
// replay the current registry and every later batch is an asynchronous
// change notification. A single decoder goroutine feeds the batch channel;
// all waiting happens inside RunUntil with a bounded deadline, so a missing
// or unresponsive server can never hang the invocation.

// batch is one JSON array from the monitor stream.
type batch []registryObject

// serverConn is the run-loop handle handed to the coordinator.
type serverConn interface {
	// RunUntil dispatches incoming batches to pred until it returns true or
	// the timeout elapses. A timeout is reported as errTimeout.
	RunUntil(timeout time.Duration, pred func(batch) bool) error

	// Close releases the session. Safe to call on every exit path.
	Close() error
}

type monitorConn struct {
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	group   *errgroup.Group
	batches chan batch
	logger  *slog.Logger
}

// openMonitor establishes the server session by starting the monitor tool.
// Failure to start is a connection error: the server (or its tooling) is
// unreachable.
func openMonitor(ctx context.Context, tools ToolsConfig, logger *slog.Logger) (*monitorConn, error) {
	ctx, cancel := context.WithCancel(ctx)

	args := []string{"--monitor"}
	if tools.Remote != "" {
		args = append(args, "--remote", tools.Remote)
	}

	cmd := exec.CommandContext(ctx, tools.DumpBin, args...)
	// The monitor must never outlive a killed invocation.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", errConnection, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: starting %s: %v", errConnection, tools.DumpBin, err)
	}

	logger.Debug("monitor session opened", "bin", tools.DumpBin, "pid", cmd.Process.Pid)

	c := &monitorConn{
		cmd:     cmd,
		cancel:  cancel,
		batches: make(chan batch, 8),
		logger:  logger,
	}

	group, ctx := errgroup.WithContext(ctx)
	c.group = group
	group.Go(func() error {
		defer close(c.batches)
		dec := json.NewDecoder(stdout)
		for {
			var b batch
			if err := dec.Decode(&b); err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("decode monitor batch: %w", err)
			}
			select {
			case c.batches <- b:
			case <-ctx.Done():
				return nil
			}
		}
	})

	return c, nil
}

func (c *monitorConn) RunUntil(timeout time.Duration, pred func(batch) bool) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case b, ok := <-c.batches:
			if !ok {
				return fmt.Errorf("%w: monitor stream ended", errConnection)
			}
			if pred(b) {
				return nil
			}
		case <-timer.C:
			return errTimeout
		}
	}
}

func (c *monitorConn) Close() error {
	c.cancel()
	waitErr := c.group.Wait()
	// Reap the child; a kill-induced exit is the expected outcome here.
	if err := c.cmd.Wait(); err != nil && waitErr == nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			waitErr = err
		}
	}
	c.logger.Debug("monitor session closed")
	return waitErr
}
