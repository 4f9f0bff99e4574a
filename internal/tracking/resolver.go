package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/tracklink"
)

// ClickMeta carries the request-scoped facts a click record needs.
type ClickMeta struct {
	UserID         string
	IP             string
	UserAgent      string
	AcceptLanguage string
	Referer        string
}

// Resolver turns a link id into a destination URL and emits the click as a
// side effect.
type Resolver struct {
	store tracklink.Store
	sink  Sink
}

func NewResolver(store tracklink.Store, sink Sink) *Resolver {
	return &Resolver{store: store, sink: sink}
}

// Resolve looks up the link and dispatches a click event. The only error is
// tracklink.ErrNotFound; click recording never fails a redirect.
func (r *Resolver) Resolve(ctx context.Context, linkID string, meta ClickMeta) (tracklink.TrackedLink, error) {
	link, err := r.store.Lookup(ctx, linkID)
	if err != nil {
		return tracklink.TrackedLink{}, err
	}

	evt := ledger.ClickEvent{
		ID:              uuid.New().String(),
		LinkID:          link.LinkID,
		RecipeID:        link.RecipeID,
		Ingredient:      link.Ingredient,
		Provider:        link.Provider,
		CommissionPct:   link.CommissionPct,
		UserID:          meta.UserID,
		UserFingerprint: Fingerprint(meta.UserAgent, meta.IP, meta.AcceptLanguage),
		IPHash:          HashIP(meta.IP),
		UserAgent:       meta.UserAgent,
		Referer:         meta.Referer,
		ClickedAt:       time.Now().UTC(),
	}
	r.sink.Dispatch(evt)

	return link, nil
}
