package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"seowatch/internal/engine"
	"seowatch/internal/monitor"
	"seowatch/internal/notify"
	"seowatch/internal/storage"
)

type fakeRepo struct {
	mu    sync.Mutex
	rules []storage.RuleRecord
}

func (f *fakeRepo) setRules(records []storage.RuleRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = records
}

func (f *fakeRepo) ListEnabledRules(ctx context.Context) ([]storage.RuleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.RuleRecord{}, f.rules...), nil
}

func (f *fakeRepo) ListEnabledRulesForProperty(ctx context.Context, property string) ([]storage.RuleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.RuleRecord
	for _, rec := range f.rules {
		if rec.Property == property {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetCurrentMetrics(ctx context.Context, property, pagePath string) (map[string]float64, error) {
	return map[string]float64{"gsc_clicks": 42}, nil
}

func (f *fakeRepo) GetMetricsHistory(ctx context.Context, property, pagePath string, lookbackDays int) ([]map[string]float64, error) {
	return nil, nil
}

type fakeAlertStore struct {
	mu       sync.Mutex
	inserted []storage.AlertRecord
}

func (f *fakeAlertStore) InsertAlert(ctx context.Context, alert storage.AlertRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, alert)
	return "alert-1", nil
}

func (f *fakeAlertStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type noopCounter struct{}

func (noopCounter) CountRecentAlerts(ctx context.Context, ruleID, property, pagePath string, since time.Time) (int, error) {
	return 0, nil
}

func TestRegistrySchedulesAndEvaluates(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &fakeRepo{}
	repo.setRules([]storage.RuleRecord{{
		ID:       "r-1",
		Property: "example.com",
		Enabled:  true,
		RuleJSON: []byte(`{
			"id": "r-1", "name": "clicks drop", "type": "threshold",
			"metric": "gsc_clicks",
			"condition": {"threshold": {"op": "<", "value": 100}},
			"severity": "high", "action": {"type": "webhook"}
		}`),
	}})

	store := &fakeAlertStore{}
	dedup := monitor.NewDeduplicator(noopCounter{}, logger)
	registry := notify.NewRegistry(map[string]notify.Dispatcher{})
	eng := engine.New(store, dedup, registry, logger)

	reg := NewRegistry(repo, eng, logger, 1, time.Second, 20*time.Millisecond, 30)
	defer reg.Stop()

	if err := reg.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	jobs := reg.ListJobs()
	if len(jobs) != 1 || jobs[0].Property != "example.com" {
		t.Fatalf("expected one job for example.com, got %+v", jobs)
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected an alert within the deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRegistryReconcileRemovesStaleJobs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &fakeRepo{}
	repo.setRules([]storage.RuleRecord{{
		ID: "r-1", Property: "example.com", Enabled: true,
		RuleJSON: []byte(`{"id":"r-1","name":"n","type":"threshold","metric":"m","condition":{"threshold":{"op":">","value":1}},"severity":"low","action":{"type":"webhook"}}`),
	}})

	store := &fakeAlertStore{}
	eng := engine.New(store, monitor.NewDeduplicator(noopCounter{}, logger), notify.NewRegistry(nil), logger)
	reg := NewRegistry(repo, eng, logger, 1, time.Second, time.Hour, 30)
	defer reg.Stop()

	if err := reg.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(reg.ListJobs()) != 1 {
		t.Fatalf("expected one job")
	}

	repo.setRules(nil)
	if err := reg.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(reg.ListJobs()) != 0 {
		t.Fatalf("expected stale job removed, got %+v", reg.ListJobs())
	}
}

func TestRegistrySkipsInvalidRuleJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &fakeRepo{}
	repo.setRules([]storage.RuleRecord{
		{ID: "bad", Property: "example.com", Enabled: true, RuleJSON: []byte(`{broken`)},
		{ID: "r-1", Property: "example.com", Enabled: true,
			RuleJSON: []byte(`{"id":"r-1","name":"n","type":"threshold","metric":"gsc_clicks","condition":{"threshold":{"op":"<","value":100}},"severity":"low","action":{"type":"webhook"}}`)},
	})

	store := &fakeAlertStore{}
	eng := engine.New(store, monitor.NewDeduplicator(noopCounter{}, logger), notify.NewRegistry(nil), logger)
	reg := NewRegistry(repo, eng, logger, 1, time.Second, time.Hour, 30)
	defer reg.Stop()

	reg.execute(JobRun{property: "example.com"})
	if store.count() != 1 {
		t.Fatalf("valid sibling of a broken rule must still evaluate, got %d alerts", store.count())
	}
}
