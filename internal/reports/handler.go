package reports

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/brfin/caixa-api/internal/api/middleware"
)

// Reporter is the slice of the report service the HTTP layer needs.
type Reporter interface {
	DRE(ctx context.Context, year, month int) (DRE, error)
	RefreshAll(ctx context.Context) (int, error)
}

// API handles report endpoints.
type API struct {
	svc    Reporter
	logger *slog.Logger
}

// NewAPI creates a new reports API.
func NewAPI(svc Reporter, logger *slog.Logger) *API {
	return &API{svc: svc, logger: logger}
}

// Register attaches the report routes to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/reports/dre", a.GetDRE)
	mux.HandleFunc("POST /v1/reports/refresh", a.Refresh)
}

// GetDRE handles GET /v1/reports/dre?year=&month=. The window defaults to
// the current calendar month.
func (a *API) GetDRE(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	query := r.URL.Query()
	if v := query.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2200 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = n
	}
	if v := query.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid month, expected 1-12")
			return
		}
		month = n
	}

	dre, err := a.svc.DRE(r.Context(), year, month)
	if err != nil {
		a.logger.Error("failed to build DRE",
			slog.Int("year", year), slog.Int("month", month), slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dre)
}

// Refresh handles POST /v1/reports/refresh. It recomputes every stored
// monthly summary synchronously.
func (a *API) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshed, err := a.svc.RefreshAll(r.Context())
	if err != nil {
		a.logger.Error("failed to refresh summaries", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to refresh summaries")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]int{"months_refreshed": refreshed})
}
