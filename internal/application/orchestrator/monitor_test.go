package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"github.com/lite-lake/dnswatch/internal/domain"
	"github.com/lite-lake/dnswatch/internal/domain/entity"
	"github.com/lite-lake/dnswatch/internal/infrastructure/state"
)

type fakeSource struct {
	snapshots []*entity.Snapshot
	err       error
	calls     int
	onFetch   func(call int)
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchSnapshot(ctx context.Context) (*entity.Snapshot, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch(f.calls)
	}
	if f.err != nil {
		return nil, f.err
	}
	i := min(f.calls-1, len(f.snapshots)-1)
	return f.snapshots[i].Clone(), nil
}

type memoryStore struct {
	snapshot *entity.Snapshot
	loadErr  error
	saveErr  error
	saves    int
}

func (s *memoryStore) Load(ctx context.Context) (*entity.Snapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.snapshot == nil {
		return entity.NewSnapshot(), nil
	}
	return s.snapshot.Clone(), nil
}

func (s *memoryStore) Save(ctx context.Context, snapshot *entity.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.snapshot = snapshot.Clone()
	return nil
}

type spyNotifier struct {
	mu       sync.Mutex
	messages []*slack.WebhookMessage
	err      error
}

func (n *spyNotifier) Send(ctx context.Context, msg *slack.WebhookMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *spyNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func snapshotOf(records ...entity.Record) *entity.Snapshot {
	s := entity.NewSnapshot()
	s.AddZone("example.com.")
	for _, r := range records {
		s.AddRecord("example.com.", r)
	}
	return s
}

func a(name, value string) entity.Record {
	return entity.Record{Name: name, Type: "A", TTL: 300, Values: []string{value}}
}

var fixedClock = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestMonitor_RunOnce_FirstRunReportsAdded(t *testing.T) {
	src := &fakeSource{snapshots: []*entity.Snapshot{snapshotOf(a("www.example.com.", "1.1.1.1"), a("api.example.com.", "2.2.2.2"))}}
	store := &memoryStore{}
	spy := &spyNotifier{}

	result, err := NewMonitor(src, store, spy, nil, Options{Clock: fixedClock}).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Changes.Added) != 2 || result.Changes.Total() != 2 {
		t.Errorf("expected 2 added, got %+v", result.Changes)
	}
	if !result.Notified || spy.count() != 1 {
		t.Errorf("expected one notification, got %d", spy.count())
	}
	if store.saves != 1 || store.snapshot.RecordCount() != 2 {
		t.Errorf("expected current records saved, saves=%d", store.saves)
	}
}

func TestMonitor_RunOnce_NoChangesNoNotification(t *testing.T) {
	snap := snapshotOf(a("www.example.com.", "1.1.1.1"))
	src := &fakeSource{snapshots: []*entity.Snapshot{snap}}
	store := &memoryStore{snapshot: snap.Clone()}
	spy := &spyNotifier{}

	result, err := NewMonitor(src, store, spy, nil, Options{Clock: fixedClock}).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Changes.HasChanges() {
		t.Errorf("expected no changes, got %+v", result.Changes)
	}
	if spy.count() != 0 {
		t.Errorf("expected no notification for an empty change set, got %d", spy.count())
	}
	if store.saves != 1 {
		t.Errorf("expected baseline to be saved even without changes, saves=%d", store.saves)
	}
}

func TestMonitor_RunOnce_ModifiedRecord(t *testing.T) {
	src := &fakeSource{snapshots: []*entity.Snapshot{snapshotOf(a("www.example.com.", "9.9.9.9"))}}
	store := &memoryStore{snapshot: snapshotOf(a("www.example.com.", "1.1.1.1"))}
	spy := &spyNotifier{}

	result, err := NewMonitor(src, store, spy, nil, Options{Clock: fixedClock}).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Changes.Modified) != 1 || result.Changes.Total() != 1 {
		t.Fatalf("expected exactly one modified, got %+v", result.Changes)
	}
	if got := spy.messages[0].Text; got != "🔄 Route 53 DNS Changes Detected (1 changes)" {
		t.Errorf("unexpected message text %q", got)
	}
}

func TestMonitor_RunOnce_Failures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		source    *fakeSource
		store     *memoryStore
		notifier  *spyNotifier
		wantKind  error
		wantSaves int
	}{
		{
			name:     "fetch failure",
			source:   &fakeSource{err: domain.NewOpError("list hosted zones", domain.ErrFetchFailed, boom)},
			store:    &memoryStore{},
			notifier: &spyNotifier{},
			wantKind: domain.ErrFetchFailed,
		},
		{
			name:     "fetch failure without kind",
			source:   &fakeSource{err: boom},
			store:    &memoryStore{},
			notifier: &spyNotifier{},
			wantKind: domain.ErrFetchFailed,
		},
		{
			name:     "corrupt state",
			source:   &fakeSource{snapshots: []*entity.Snapshot{snapshotOf(a("www.example.com.", "1.1.1.1"))}},
			store:    &memoryStore{loadErr: domain.NewOpError("decode json state file", domain.ErrCorruptState, boom)},
			notifier: &spyNotifier{},
			wantKind: domain.ErrCorruptState,
		},
		{
			name:     "save failure",
			source:   &fakeSource{snapshots: []*entity.Snapshot{snapshotOf(a("www.example.com.", "1.1.1.1"))}},
			store:    &memoryStore{saveErr: boom},
			notifier: &spyNotifier{},
			wantKind: domain.ErrStateWriteFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMonitor(tt.source, tt.store, tt.notifier, nil, Options{Clock: fixedClock}).RunOnce(context.Background())
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("expected %v, got %v", tt.wantKind, err)
			}
			if tt.store.saves != tt.wantSaves {
				t.Errorf("expected %d saves, got %d", tt.wantSaves, tt.store.saves)
			}
		})
	}
}

func TestMonitor_RunOnce_WithoutSource(t *testing.T) {
	store := &memoryStore{}
	spy := &spyNotifier{}

	_, err := NewMonitor(nil, store, spy, nil, Options{Clock: fixedClock}).RunOnce(context.Background())
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if store.saves != 0 || spy.count() != 0 {
		t.Errorf("expected nothing saved or sent, saves=%d sent=%d", store.saves, spy.count())
	}
}

func TestMonitor_RunOnce_NotifyFailureStillSaves(t *testing.T) {
	src := &fakeSource{snapshots: []*entity.Snapshot{snapshotOf(a("www.example.com.", "1.1.1.1"))}}
	store := &memoryStore{}
	spy := &spyNotifier{err: errors.New("webhook down")}

	result, err := NewMonitor(src, store, spy, nil, Options{Clock: fixedClock}).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("notification failure must not fail the run: %v", err)
	}
	if !errors.Is(result.NotifyErr, domain.ErrNotificationDelivery) {
		t.Errorf("expected NotifyErr to wrap ErrNotificationDelivery, got %v", result.NotifyErr)
	}
	if result.Notified {
		t.Error("expected Notified to be false")
	}
	if store.saves != 1 {
		t.Errorf("expected baseline saved after failed notification, saves=%d", store.saves)
	}
}

func TestMonitor_RunOnce_WithFileStore(t *testing.T) {
	dir := t.TempDir()
	store := state.NewFileStore(filepath.Join(dir, "previous_route53_scan.json"))
	lastRun := filepath.Join(dir, "last_run.txt")
	src := &fakeSource{snapshots: []*entity.Snapshot{
		snapshotOf(a("www.example.com.", "1.1.1.1")),
		snapshotOf(a("www.example.com.", "1.1.1.1")),
		snapshotOf(),
	}}
	spy := &spyNotifier{}
	m := NewMonitor(src, store, spy, nil, Options{LastRunFile: lastRun, Clock: fixedClock})

	wantTotals := []int{1, 0, 1}
	for i, want := range wantTotals {
		result, err := m.RunOnce(context.Background())
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i+1, err)
		}
		if result.Changes.Total() != want {
			t.Errorf("run %d: expected %d changes, got %d", i+1, want, result.Changes.Total())
		}
	}
	if spy.count() != 2 {
		t.Errorf("expected 2 notifications, got %d", spy.count())
	}

	data, err := os.ReadFile(lastRun)
	if err != nil {
		t.Fatalf("reading last run file: %v", err)
	}
	if string(data) != "2024-01-02 03:04:05" {
		t.Errorf("unexpected last run content %q", data)
	}
}

func TestMonitor_Probe(t *testing.T) {
	src := &fakeSource{}
	store := &memoryStore{}
	spy := &spyNotifier{}

	if err := NewMonitor(src, store, spy, nil, Options{Clock: fixedClock}).Probe(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spy.count() != 1 {
		t.Fatalf("expected one probe message, got %d", spy.count())
	}
	if src.calls != 0 || store.saves != 0 {
		t.Errorf("probe must not fetch or save: fetches=%d saves=%d", src.calls, store.saves)
	}

	spy.err = errors.New("down")
	err := NewMonitor(src, store, spy, nil, Options{Clock: fixedClock}).Probe(context.Background())
	if !errors.Is(err, domain.ErrNotificationDelivery) {
		t.Errorf("expected ErrNotificationDelivery, got %v", err)
	}
}

func TestMonitor_LoopContinuesAfterFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{snapshots: []*entity.Snapshot{snapshotOf(a("www.example.com.", "1.1.1.1"))}}
	store := &memoryStore{}
	src.onFetch = func(call int) {
		switch call {
		case 1:
			store.saveErr = errors.New("disk full")
		case 2:
			store.saveErr = nil
		case 3:
			cancel()
		}
	}
	spy := &spyNotifier{}

	done := make(chan error, 1)
	go func() {
		done <- NewMonitor(src, store, spy, nil, Options{Clock: fixedClock}).Loop(ctx, time.Millisecond)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	if src.calls != 3 {
		t.Errorf("expected 3 runs, got %d", src.calls)
	}
	if store.saves < 1 {
		t.Errorf("expected the run after the failure to save, saves=%d", store.saves)
	}
}
