package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

// ClickRepo implements ledger.ClickLedger against PostgreSQL. Attribution
// lookups rely on the composite index on
// (link_id, user_fingerprint, clicked_at).
type ClickRepo struct{ db *sql.DB }

// NewClickRepo creates a Postgres-backed click ledger.
func NewClickRepo(db *sql.DB) *ClickRepo { return &ClickRepo{db: db} }

func (r *ClickRepo) AppendClick(ctx context.Context, evt ledger.ClickEvent) error {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO affiliate_clicks
			(id, link_id, recipe_id, ingredient, provider, commission_pct,
			 user_id, user_fingerprint, ip_hash, user_agent, referer, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, evt.ID, evt.LinkID, evt.RecipeID, evt.Ingredient, evt.Provider, evt.CommissionPct,
		nullable(evt.UserID), nullable(evt.UserFingerprint), nullable(evt.IPHash),
		nullable(evt.UserAgent), nullable(evt.Referer), evt.ClickedAt)
	if err != nil {
		return fmt.Errorf("append click: %w", err)
	}
	return nil
}

func (r *ClickRepo) Candidates(ctx context.Context, linkID string, from, to time.Time, fingerprint string) ([]ledger.ClickEvent, error) {
	q := `
		SELECT id, link_id, recipe_id, ingredient, provider, commission_pct,
		       COALESCE(user_id,''), COALESCE(user_fingerprint,''), COALESCE(ip_hash,''),
		       COALESCE(user_agent,''), COALESCE(referer,''), clicked_at
		FROM affiliate_clicks
		WHERE link_id = $1 AND clicked_at >= $2 AND clicked_at <= $3`
	args := []interface{}{linkID, from, to}
	if fingerprint != "" {
		q += ` AND user_fingerprint = $4`
		args = append(args, fingerprint)
	}
	q += ` ORDER BY clicked_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()
	return scanClicks(rows)
}

func (r *ClickRepo) ClicksSince(ctx context.Context, since time.Time) ([]ledger.ClickEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, link_id, recipe_id, ingredient, provider, commission_pct,
		       COALESCE(user_id,''), COALESCE(user_fingerprint,''), COALESCE(ip_hash,''),
		       COALESCE(user_agent,''), COALESCE(referer,''), clicked_at
		FROM affiliate_clicks
		WHERE clicked_at >= $1
		ORDER BY clicked_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query clicks since: %w", err)
	}
	defer rows.Close()
	return scanClicks(rows)
}

func (r *ClickRepo) ClicksByID(ctx context.Context, ids []string) (map[string]ledger.ClickEvent, error) {
	out := make(map[string]ledger.ClickEvent, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	// pq.Array would be nicer but ANY($1) needs the pq driver either way;
	// chunked IN lists keep sqlmock-friendly plain placeholders.
	for _, id := range ids {
		row := r.db.QueryRowContext(ctx, `
			SELECT id, link_id, recipe_id, ingredient, provider, commission_pct,
			       COALESCE(user_id,''), COALESCE(user_fingerprint,''), COALESCE(ip_hash,''),
			       COALESCE(user_agent,''), COALESCE(referer,''), clicked_at
			FROM affiliate_clicks WHERE id = $1
		`, id)
		var c ledger.ClickEvent
		err := row.Scan(&c.ID, &c.LinkID, &c.RecipeID, &c.Ingredient, &c.Provider, &c.CommissionPct,
			&c.UserID, &c.UserFingerprint, &c.IPHash, &c.UserAgent, &c.Referer, &c.ClickedAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("click by id: %w", err)
		}
		out[c.ID] = c
	}
	return out, nil
}

func scanClicks(rows *sql.Rows) ([]ledger.ClickEvent, error) {
	var out []ledger.ClickEvent
	for rows.Next() {
		var c ledger.ClickEvent
		if err := rows.Scan(&c.ID, &c.LinkID, &c.RecipeID, &c.Ingredient, &c.Provider, &c.CommissionPct,
			&c.UserID, &c.UserFingerprint, &c.IPHash, &c.UserAgent, &c.Referer, &c.ClickedAt); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
