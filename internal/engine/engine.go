package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"seowatch/internal/metrics"
	"seowatch/internal/monitor"
	"seowatch/internal/notify"
	"seowatch/internal/rules"
	"seowatch/internal/storage"
)

// AlertStore is the slice of the alert history store the engine writes to.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert storage.AlertRecord) (string, error)
}

// AlertPublisher announces persisted alerts on the bus. Optional.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alertID, ruleID, property, severity string) error
}

type Engine struct {
	store       AlertStore
	dedup       *monitor.Deduplicator
	dispatchers *notify.Registry
	publisher   AlertPublisher
	sensitivity SensitivityTable
	logger      *slog.Logger
	workers     int
	dedupWindow time.Duration
}

type Option func(*Engine)

func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithSensitivity(table SensitivityTable) Option {
	return func(e *Engine) {
		if len(table) > 0 {
			e.sensitivity = table
		}
	}
}

func WithDedupWindow(window time.Duration) Option {
	return func(e *Engine) {
		if window > 0 {
			e.dedupWindow = window
		}
	}
}

func WithPublisher(pub AlertPublisher) Option {
	return func(e *Engine) {
		e.publisher = pub
	}
}

func New(store AlertStore, dedup *monitor.Deduplicator, dispatchers *notify.Registry, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	engine := &Engine{
		store:       store,
		dedup:       dedup,
		dispatchers: dispatchers,
		sensitivity: DefaultSensitivity(),
		logger:      logger,
		workers:     4,
		dedupWindow: monitor.DefaultWindow,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// EvaluateAll evaluates every rule against one immutable snapshot and
// history. Rules run concurrently on a bounded pool; one rule's failure
// never aborts its siblings. Results are returned in input order.
func (e *Engine) EvaluateAll(ctx context.Context, property, pagePath string, ruleSet []rules.Rule, snap Snapshot, hist History) []RuleResult {
	start := time.Now()
	results := make([]RuleResult, len(ruleSet))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range ruleSet {
		wg.Add(1)
		go func(idx int, rule rules.Rule) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = e.evaluateOne(ctx, property, pagePath, rule, snap, hist)
		}(i, ruleSet[i])
	}
	wg.Wait()
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	return results
}

func (e *Engine) evaluateOne(ctx context.Context, property, pagePath string, rule rules.Rule, snap Snapshot, hist History) RuleResult {
	result := RuleResult{RuleID: rule.ID, RuleName: rule.Name, RuleType: rule.Type}
	if err := ctx.Err(); err != nil {
		result.Skipped = true
		result.SkipReason = "evaluation canceled"
		metrics.EvaluationsTotal.WithLabelValues(rule.Type, "skipped").Inc()
		return result
	}

	triggered, skipReason := e.decide(rule, snap, hist)
	if skipReason != "" {
		result.Skipped = true
		result.SkipReason = skipReason
		e.logger.Debug("rule skipped",
			slog.String("ruleId", rule.ID),
			slog.String("reason", skipReason))
		metrics.EvaluationsTotal.WithLabelValues(rule.Type, "skipped").Inc()
		return result
	}
	if !triggered {
		metrics.EvaluationsTotal.WithLabelValues(rule.Type, "not_triggered").Inc()
		return result
	}

	result.Triggered = true
	window := e.dedupWindow
	if rule.SuppressionWindowMinutes != nil && *rule.SuppressionWindowMinutes > 0 {
		window = time.Duration(*rule.SuppressionWindowMinutes) * time.Minute
	}
	if e.dedup.IsDuplicate(ctx, rule.ID, property, pagePath, window) {
		result.Suppressed = true
		e.logger.Debug("alert suppressed within window",
			slog.String("ruleId", rule.ID),
			slog.String("property", property))
		metrics.EvaluationsTotal.WithLabelValues(rule.Type, "suppressed").Inc()
		return result
	}
	metrics.EvaluationsTotal.WithLabelValues(rule.Type, "triggered").Inc()

	result.Message = ComposeMessage(rule, snap, hist, e.sensitivity)
	record := storage.AlertRecord{
		RuleID:      rule.ID,
		Property:    property,
		PagePath:    pagePath,
		Severity:    rule.Severity,
		Title:       rule.Name,
		Message:     result.Message,
		Metadata:    e.buildMetadata(rule, snap, hist),
		TriggeredAt: time.Now().UTC(),
		Status:      storage.StatusNew,
	}
	alertID, err := e.store.InsertAlert(ctx, record)
	if err != nil {
		// The alert is reported on the result even though persistence
		// failed; the next cycle will re-trigger (at-least-once).
		e.logger.Error("failed to persist alert",
			slog.String("ruleId", rule.ID),
			slog.String("error", err.Error()))
		result.Error = err.Error()
		return result
	}
	result.AlertID = alertID
	metrics.AlertsPersisted.Inc()

	e.dispatch(ctx, rule, property, pagePath, &result, record, alertID)
	if e.publisher != nil {
		if err := e.publisher.PublishAlert(ctx, alertID, rule.ID, property, rule.Severity); err != nil {
			e.logger.Warn("failed to publish alert event",
				slog.String("alertId", alertID),
				slog.String("error", err.Error()))
		}
	}
	return result
}

// decide runs the pure per-type evaluator. The second return value is a
// non-empty skip reason when the rule could not be evaluated at all.
func (e *Engine) decide(rule rules.Rule, snap Snapshot, hist History) (bool, string) {
	switch rule.Type {
	case rules.TypeThreshold:
		spec := rule.Condition.Threshold
		if spec == nil {
			return false, "threshold condition missing"
		}
		if MalformedThreshold(*spec) {
			e.logger.Warn("malformed threshold condition, rule will not fire",
				slog.String("ruleId", rule.ID),
				slog.String("op", spec.Op))
			return false, ""
		}
		value, ok := snap[rule.Metric]
		if !ok {
			// Metric absent from the snapshot: the rule silently does
			// not fire.
			return false, ""
		}
		hit, _, _ := EvaluateThreshold(*spec, value)
		return hit, ""
	case rules.TypeAnomaly:
		spec := rule.Condition.Anomaly
		if spec == nil {
			return false, "anomaly condition missing"
		}
		res := EvaluateAnomaly(hist.Series(rule.Metric), spec.Sensitivity, e.sensitivity)
		if !res.Sufficient {
			return false, "insufficient history for anomaly detection"
		}
		return res.Hit, ""
	case rules.TypePattern:
		spec := rule.Condition.Pattern
		if spec == nil {
			return false, "pattern condition missing"
		}
		res := EvaluatePattern(hist.Series(rule.Metric), spec.Pattern, spec.Duration)
		if !res.Known {
			e.logger.Warn("unknown pattern type, rule will not fire",
				slog.String("ruleId", rule.ID),
				slog.String("pattern", spec.Pattern))
			return false, ""
		}
		if !res.Sufficient {
			return false, "insufficient history for pattern detection"
		}
		return res.Hit, ""
	default:
		return false, "unsupported rule type " + rule.Type
	}
}

func (e *Engine) dispatch(ctx context.Context, rule rules.Rule, property, pagePath string, result *RuleResult, record storage.AlertRecord, alertID string) {
	dispatcher, err := e.dispatchers.DispatcherFor(rule.Action.Type)
	if err != nil {
		// Unknown channel: the record is already persisted, delivery is
		// skipped.
		e.logger.Warn("dispatch skipped",
			slog.String("ruleId", rule.ID),
			slog.String("actionType", rule.Action.Type),
			slog.String("error", err.Error()))
		metrics.DispatchTotal.WithLabelValues(rule.Action.Type, "skipped").Inc()
		return
	}
	alert := notify.Alert{
		ID:          alertID,
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Property:    property,
		PagePath:    pagePath,
		Severity:    rule.Severity,
		Message:     record.Message,
		TriggeredAt: record.TriggeredAt,
	}
	if err := dispatcher.Send(ctx, rule.Action, alert); err != nil {
		e.logger.Error("alert dispatch failed",
			slog.String("alertId", alertID),
			slog.String("channel", rule.Action.Type),
			slog.String("error", err.Error()))
		result.DispatchError = err.Error()
		metrics.DispatchTotal.WithLabelValues(rule.Action.Type, "failed").Inc()
		return
	}
	metrics.DispatchTotal.WithLabelValues(rule.Action.Type, "success").Inc()
}

func (e *Engine) buildMetadata(rule rules.Rule, snap Snapshot, hist History) json.RawMessage {
	meta := map[string]any{
		"metric":   rule.Metric,
		"ruleType": rule.Type,
	}
	switch rule.Type {
	case rules.TypeThreshold:
		if spec := rule.Condition.Threshold; spec != nil {
			if value, ok := snap[rule.Metric]; ok {
				_, observed, limit := EvaluateThreshold(*spec, value)
				meta["observed"] = observed
				meta["limit"] = limit
			}
		}
	case rules.TypeAnomaly:
		if spec := rule.Condition.Anomaly; spec != nil {
			res := EvaluateAnomaly(hist.Series(rule.Metric), spec.Sensitivity, e.sensitivity)
			meta["zScore"] = res.ZScore
			meta["baselineMean"] = res.Mean
			meta["baselineStdDev"] = res.StdDev
			meta["latest"] = res.Latest
			meta["sensitivity"] = res.Sensitivity
		}
	case rules.TypePattern:
		if spec := rule.Condition.Pattern; spec != nil {
			res := EvaluatePattern(hist.Series(rule.Metric), spec.Pattern, spec.Duration)
			meta["pattern"] = spec.Pattern
			meta["duration"] = spec.Duration
			meta["recentValues"] = res.Window
			if res.PreviousTrend != "" {
				meta["previousTrend"] = res.PreviousTrend
				meta["recentTrend"] = res.RecentTrend
			}
		}
	}
	data, _ := json.Marshal(meta)
	return data
}
