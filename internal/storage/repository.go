package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	Store *Store
}

func NewRepository(store *Store) *Repository {
	return &Repository{Store: store}
}

func (r *Repository) ListEnabledRules(ctx context.Context) ([]RuleRecord, error) {
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT id, property, rule_json, enabled
		FROM alert_rules WHERE enabled = true`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []RuleRecord{}
	for rows.Next() {
		var rec RuleRecord
		if err := rows.Scan(&rec.ID, &rec.Property, &rec.RuleJSON, &rec.Enabled); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func (r *Repository) ListEnabledRulesForProperty(ctx context.Context, property string) ([]RuleRecord, error) {
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT id, property, rule_json, enabled
		FROM alert_rules WHERE enabled = true AND property = $1`, property)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []RuleRecord{}
	for rows.Next() {
		var rec RuleRecord
		if err := rows.Scan(&rec.ID, &rec.Property, &rec.RuleJSON, &rec.Enabled); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func (r *Repository) GetRule(ctx context.Context, id string) (RuleRecord, error) {
	row := r.Store.Pool.QueryRow(ctx, `
		SELECT id, property, rule_json, enabled FROM alert_rules WHERE id=$1`, id)
	var rec RuleRecord
	if err := row.Scan(&rec.ID, &rec.Property, &rec.RuleJSON, &rec.Enabled); err != nil {
		return RuleRecord{}, ErrNotFound
	}
	return rec, nil
}

// InsertAlert persists a triggered alert and returns the minted id.
func (r *Repository) InsertAlert(ctx context.Context, alert AlertRecord) (string, error) {
	id := alert.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.Store.Pool.Exec(ctx, `
		INSERT INTO alerts (id, rule_id, property, page_path, severity, title, message, metadata, triggered_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id, alert.RuleID, alert.Property, alert.PagePath, alert.Severity,
		alert.Title, alert.Message, alert.Metadata, alert.TriggeredAt, alert.Status)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CountRecentAlerts counts non-closed alerts for a rule (and property/page
// when given) triggered after `since`. Resolved and false-positive alerts do
// not suppress new firings.
func (r *Repository) CountRecentAlerts(ctx context.Context, ruleID, property, pagePath string, since time.Time) (int, error) {
	row := r.Store.Pool.QueryRow(ctx, `
		SELECT count(*) FROM alerts
		WHERE rule_id = $1
		  AND ($2 = '' OR property = $2)
		  AND ($3 = '' OR page_path = $3)
		  AND triggered_at > $4
		  AND status NOT IN ($5, $6)`,
		ruleID, property, pagePath, since, StatusResolved, StatusFalsePositive)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateAlertStatus is used by workflow tooling, never by the engine itself.
func (r *Repository) UpdateAlertStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid alert status %q", status)
	}
	tag, err := r.Store.Pool.Exec(ctx, `
		UPDATE alerts SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
