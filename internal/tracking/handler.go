package tracking

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/pkg/logger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/tracklink"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/go/{linkID}", h.HandleRedirect)
	return r
}

// HandleRedirect resolves a tracked link and 302s the visitor to the
// partner URL. Click recording happens off the request path.
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")

	meta := ClickMeta{
		UserID:         r.URL.Query().Get("uid"),
		IP:             realIP(r),
		UserAgent:      r.UserAgent(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		Referer:        r.Referer(),
	}

	link, err := h.resolver.Resolve(r.Context(), linkID, meta)
	if err == tracklink.ErrNotFound {
		http.Error(w, "link not found or expired", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("resolve link", "link_id", linkID, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logger.Info("redirect", "link_id", link.LinkID, "provider", link.Provider, "recipe_id", link.RecipeID)
	http.Redirect(w, r, link.DestinationURL, http.StatusFound)
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
