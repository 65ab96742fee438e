package storage

import (
	"context"
	"time"
)

// GetCurrentMetrics returns the most recent value of every metric recorded
// for a property (and page when given), keyed by metric name.
func (r *Repository) GetCurrentMetrics(ctx context.Context, property, pagePath string) (map[string]float64, error) {
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT DISTINCT ON (metric) metric, value
		FROM daily_metrics
		WHERE property = $1 AND ($2 = '' OR page_path = $2)
		ORDER BY metric, date DESC`, property, pagePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	snapshot := map[string]float64{}
	for rows.Next() {
		var metric string
		var value float64
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, err
		}
		snapshot[metric] = value
	}
	return snapshot, rows.Err()
}

// GetMetricsHistory returns per-day metric maps ordered oldest to newest.
// Days with no rows are simply absent; the caller does not interpolate.
func (r *Repository) GetMetricsHistory(ctx context.Context, property, pagePath string, lookbackDays int) ([]map[string]float64, error) {
	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT date, metric, value
		FROM daily_metrics
		WHERE property = $1 AND ($2 = '' OR page_path = $2) AND date >= $3
		ORDER BY date ASC`, property, pagePath, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	history := []map[string]float64{}
	var lastDate time.Time
	var current map[string]float64
	for rows.Next() {
		var date time.Time
		var metric string
		var value float64
		if err := rows.Scan(&date, &metric, &value); err != nil {
			return nil, err
		}
		if current == nil || !date.Equal(lastDate) {
			current = map[string]float64{}
			history = append(history, current)
			lastDate = date
		}
		current[metric] = value
	}
	return history, rows.Err()
}
