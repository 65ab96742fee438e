package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"seowatch/internal/engine"
	"seowatch/internal/rules"
	"seowatch/internal/storage"
)

// Repo is the slice of storage the scheduler reads: enabled rules plus the
// metric snapshot/history for a property.
type Repo interface {
	ListEnabledRules(ctx context.Context) ([]storage.RuleRecord, error)
	ListEnabledRulesForProperty(ctx context.Context, property string) ([]storage.RuleRecord, error)
	GetCurrentMetrics(ctx context.Context, property, pagePath string) (map[string]float64, error)
	GetMetricsHistory(ctx context.Context, property, pagePath string, lookbackDays int) ([]map[string]float64, error)
}

// Registry runs one evaluation job per property on a poll cadence. Jobs feed
// a bounded worker queue so concurrent properties cannot exhaust store
// connections.
type Registry struct {
	mu           sync.Mutex
	jobs         map[string]*Job
	queue        chan JobRun
	workers      int
	repo         Repo
	engine       *engine.Engine
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	jobTimeout   time.Duration
	pollInterval time.Duration
	lookbackDays int
}

type Job struct {
	property string
	stop     chan struct{}
}

type JobRun struct {
	property string
}

type JobInfo struct {
	Property            string `json:"property"`
	PollIntervalSeconds int    `json:"pollIntervalSeconds"`
}

func NewRegistry(repo Repo, eng *engine.Engine, logger *slog.Logger, workers int, jobTimeout, pollInterval time.Duration, lookbackDays int) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	reg := &Registry{
		jobs:         map[string]*Job{},
		queue:        make(chan JobRun, 128),
		workers:      workers,
		repo:         repo,
		engine:       eng,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		jobTimeout:   jobTimeout,
		pollInterval: pollInterval,
		lookbackDays: lookbackDays,
	}
	for i := 0; i < workers; i++ {
		go reg.worker()
	}
	return reg
}

func (r *Registry) Stop() {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		close(job.stop)
	}
	r.jobs = map[string]*Job{}
}

func (r *Registry) Schedule(property string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.jobs[property]; ok {
		close(existing.stop)
	}
	job := &Job{property: property, stop: make(chan struct{})}
	r.jobs[property] = job
	go r.runTicker(job)
}

func (r *Registry) Unschedule(property string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[property]; ok {
		close(job.stop)
		delete(r.jobs, property)
	}
}

func (r *Registry) ListJobs() []JobInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]JobInfo, 0, len(r.jobs))
	for property := range r.jobs {
		jobs = append(jobs, JobInfo{Property: property, PollIntervalSeconds: int(r.pollInterval.Seconds())})
	}
	return jobs
}

// Reconcile aligns the scheduled job set with the distinct properties of the
// enabled rules. Called on startup and on every rule event.
func (r *Registry) Reconcile(ctx context.Context) error {
	records, err := r.repo.ListEnabledRules(ctx)
	if err != nil {
		return err
	}
	wanted := map[string]struct{}{}
	for _, rec := range records {
		wanted[rec.Property] = struct{}{}
	}
	r.mu.Lock()
	var stale []string
	for property := range r.jobs {
		if _, ok := wanted[property]; !ok {
			stale = append(stale, property)
		}
	}
	var missing []string
	for property := range wanted {
		if _, ok := r.jobs[property]; !ok {
			missing = append(missing, property)
		}
	}
	r.mu.Unlock()
	for _, property := range stale {
		r.Unschedule(property)
	}
	for _, property := range missing {
		r.Schedule(property)
	}
	return nil
}

func (r *Registry) runTicker(job *Job) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.queue <- JobRun{property: job.property}
		case <-job.stop:
			return
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Registry) worker() {
	for {
		select {
		case run := <-r.queue:
			r.execute(run)
		case <-r.ctx.Done():
			return
		}
	}
}

// execute runs one full evaluation cycle for a property: load its enabled
// rules, fetch the snapshot and history once, and hand the batch to the
// engine.
func (r *Registry) execute(run JobRun) {
	ctx, cancel := context.WithTimeout(context.Background(), r.jobTimeout)
	defer cancel()

	records, err := r.repo.ListEnabledRulesForProperty(ctx, run.property)
	if err != nil {
		r.logger.Error("failed to load rules",
			slog.String("property", run.property),
			slog.String("error", err.Error()))
		return
	}
	if len(records) == 0 {
		return
	}
	ruleSet := make([]rules.Rule, 0, len(records))
	for _, rec := range records {
		rule, perr := rules.ParseRule(rec.RuleJSON)
		if perr != nil {
			r.logger.Warn("skipping invalid rule",
				slog.String("ruleId", rec.ID),
				slog.String("error", perr.Message))
			continue
		}
		ruleSet = append(ruleSet, rule)
	}
	if len(ruleSet) == 0 {
		return
	}

	snapshot, err := r.repo.GetCurrentMetrics(ctx, run.property, "")
	if err != nil {
		r.logger.Error("failed to load current metrics",
			slog.String("property", run.property),
			slog.String("error", err.Error()))
		return
	}
	history, err := r.repo.GetMetricsHistory(ctx, run.property, "", r.lookbackDays)
	if err != nil {
		// Threshold rules can still run on the snapshot alone.
		r.logger.Warn("failed to load metric history, continuing without it",
			slog.String("property", run.property),
			slog.String("error", err.Error()))
		history = nil
	}

	hist := make(engine.History, 0, len(history))
	for _, point := range history {
		hist = append(hist, engine.HistoryPoint(point))
	}
	results := r.engine.EvaluateAll(ctx, run.property, "", ruleSet, engine.Snapshot(snapshot), hist)

	triggered, suppressed, skipped := 0, 0, 0
	for _, res := range results {
		switch {
		case res.Suppressed:
			suppressed++
		case res.Triggered:
			triggered++
		case res.Skipped:
			skipped++
		}
	}
	r.logger.Info("evaluation cycle complete",
		slog.String("property", run.property),
		slog.Int("rules", len(ruleSet)),
		slog.Int("triggered", triggered),
		slog.Int("suppressed", suppressed),
		slog.Int("skipped", skipped))
}
