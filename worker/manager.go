package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Worker is a long-running job supervised by a Manager.
type Worker interface {
	Start(ctx context.Context) error
}

// Manager starts and supervises a set of workers.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start blocks until ctx is done or a worker fails. A failing worker stops
// the others and its error is returned.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, len(m.workers))
	for _, w := range m.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				errs <- err
				cancel()
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	var all []error
	for err := range errs {
		all = append(all, err)
	}
	return errors.Join(all...)
}

// Periodic runs the scanner now and then on every tick of Interval.
type Periodic struct {
	Scanner  *Scanner
	Interval time.Duration
}

func (w *Periodic) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 6 * time.Hour
	}
	if err := w.runOnce(ctx); err != nil {
		return err
	}

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := w.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// runOnce only fails on a missing keyword set; storage hiccups in a
// long-running process are retried on the next tick.
func (w *Periodic) runOnce(ctx context.Context) error {
	rep, err := w.Scanner.Run(ctx)
	switch {
	case ctx.Err() != nil:
		return nil
	case errors.Is(err, ErrNoKeywords):
		return err
	case err != nil:
		slog.Error("scheduler: run failed", "run_id", rep.RunID, "err", err)
		return nil
	}
	slog.Info("scheduler: run complete", "run_id", rep.RunID, "total", rep.Digest.Total, "notified", rep.Notified)
	return nil
}
