package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/lite-lake/dnswatch/internal/application/report"
	"github.com/lite-lake/dnswatch/internal/domain"
	"github.com/lite-lake/dnswatch/internal/domain/contract"
	"github.com/lite-lake/dnswatch/internal/domain/entity"
	"github.com/lite-lake/dnswatch/internal/domain/repository"
	"github.com/lite-lake/dnswatch/internal/domain/service"
	"github.com/lite-lake/dnswatch/internal/domain/valueobject"
	"github.com/lite-lake/dnswatch/internal/infrastructure/logger"
	"github.com/lite-lake/dnswatch/internal/infrastructure/state"
)

type Options struct {
	// LastRunFile receives the start time of every run. Empty disables it.
	LastRunFile string
	Clock       func() time.Time
}

type RunResult struct {
	Changes  *valueobject.ChangeSet
	Zones    int
	Records  int
	Notified bool
	// NotifyErr is set when the report could not be delivered. The run
	// still saved the new baseline.
	NotifyErr error
}

// Monitor runs the fetch, compare, notify, save pipeline.
type Monitor struct {
	source   contract.RecordSource
	store    repository.SnapshotRepository
	notifier contract.Notifier
	differ   *service.DifferService
	opts     Options
}

func NewMonitor(source contract.RecordSource, store repository.SnapshotRepository, notifier contract.Notifier, differ *service.DifferService, opts Options) *Monitor {
	if differ == nil {
		differ = service.NewDifferService()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Monitor{
		source:   source,
		store:    store,
		notifier: notifier,
		differ:   differ,
		opts:     opts,
	}
}

// RunOnce fetches the current records, compares them with the stored
// baseline, reports any change and stores the current records as the new
// baseline. Nothing is saved when fetching or loading fails.
func (m *Monitor) RunOnce(ctx context.Context) (*RunResult, error) {
	if m.source == nil {
		return nil, domain.NewOpError("fetch current records", domain.ErrFetchFailed, errors.New("no record source configured"))
	}

	ctx = logger.WithRun(ctx, "run")
	log := logger.FromContext(ctx)
	m.touchLastRun(ctx)

	var current *entity.Snapshot
	err := logger.TimedOperation(ctx, "fetch", func() error {
		var err error
		current, err = m.source.FetchSnapshot(ctx)
		return err
	})
	if err != nil {
		return nil, ensureKind("fetch current records", domain.ErrFetchFailed, err)
	}
	log.Info("retrieved current records", "source", m.source.Name(), "zones", current.ZoneCount(), "records", current.RecordCount())

	var previous *entity.Snapshot
	err = logger.TimedOperation(ctx, "load_state", func() error {
		var err error
		previous, err = m.store.Load(ctx)
		return err
	})
	if err != nil {
		return nil, ensureKind("load previous records", domain.ErrStateReadFailed, err)
	}
	log.Info("loaded previous records", "zones", previous.ZoneCount(), "records", previous.RecordCount())

	changes := m.differ.Compare(previous, current)
	for _, d := range changes.Duplicates {
		log.Warn("ignoring duplicate record", "error", d.Err())
	}

	result := &RunResult{
		Changes: changes,
		Zones:   current.ZoneCount(),
		Records: current.RecordCount(),
	}
	ctx = logger.ContextWithLogger(ctx, log.With("zones", result.Zones, "changes", changes.Total()))
	log = logger.FromContext(ctx)
	log.Info("comparison finished", "added", len(changes.Added), "modified", len(changes.Modified), "deleted", len(changes.Deleted))

	if changes.HasChanges() {
		err := logger.TimedOperation(ctx, "notify", func() error {
			return m.notifier.Send(ctx, report.Render(changes))
		})
		if err != nil {
			result.NotifyErr = ensureKind("send change report", domain.ErrNotificationDelivery, err)
			log.Warn("continuing without notification")
		} else {
			result.Notified = true
		}
	} else {
		log.Info("no changes detected")
	}

	err = logger.TimedOperation(ctx, "save_state", func() error {
		return m.store.Save(ctx, current)
	})
	if err != nil {
		return result, ensureKind("save current records", domain.ErrStateWriteFailed, err)
	}

	log.Info("run completed")
	return result, nil
}

// Probe sends the fixed test message. It does not fetch, compare or save.
func (m *Monitor) Probe(ctx context.Context) error {
	ctx = logger.WithRun(ctx, "test")
	m.touchLastRun(ctx)

	err := logger.TimedOperation(ctx, "probe", func() error {
		return m.notifier.Send(ctx, report.Probe(m.opts.Clock()))
	})
	if err != nil {
		return ensureKind("send test message", domain.ErrNotificationDelivery, err)
	}
	return nil
}

// Loop calls RunOnce every interval until ctx is cancelled. A failed run is
// logged and the next one is attempted after the usual pause.
func (m *Monitor) Loop(ctx context.Context, interval time.Duration) error {
	log := logger.FromContext(ctx)
	log.Info("loop mode started", "interval", interval)
	defer logger.LogMetrics(ctx)

	for {
		if _, err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
			log.Error("run failed, waiting for next interval", "error", err)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("loop mode stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (m *Monitor) touchLastRun(ctx context.Context) {
	if m.opts.LastRunFile == "" {
		return
	}
	if err := state.TouchLastRun(m.opts.LastRunFile, m.opts.Clock()); err != nil {
		logger.FromContext(ctx).Warn("failed to write last run file", "path", m.opts.LastRunFile, "error", err)
	}
}

func ensureKind(op string, kind, err error) error {
	if errors.Is(err, kind) {
		return domain.WrapOp(op, err)
	}
	return domain.NewOpError(op, kind, err)
}
