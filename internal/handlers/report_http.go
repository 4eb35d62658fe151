package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Almer24/it-ticketing-system/internal/cache"
	"github.com/Almer24/it-ticketing-system/internal/repository"
	"github.com/Almer24/it-ticketing-system/internal/utils"
)

const (
	summaryCacheKey = "reports:summary"
	summaryCacheTTL = 60 * time.Second
)

type ReportsHTTP struct {
	repo  repository.TicketRepository
	cache cache.Cache
	log   zerolog.Logger
}

func NewReportsHTTP(repo repository.TicketRepository, c cache.Cache, log zerolog.Logger) *ReportsHTTP {
	return &ReportsHTTP{repo: repo, cache: c, log: log}
}

// GET /api/reports/summary
// Aggregates are served from the cache when fresh; a cache outage degrades
// to direct queries, never to a failed request.
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cached repository.ReportSummary
		err := h.cache.Get(r.Context(), summaryCacheKey, &cached)
		if err == nil {
			utils.JSON(w, http.StatusOK, &cached)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.log.Warn().Err(err).Msg("summary cache read failed")
		}

		s, err := h.repo.Summary(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		if err := h.cache.Set(r.Context(), summaryCacheKey, s, summaryCacheTTL); err != nil {
			h.log.Warn().Err(err).Msg("summary cache write failed")
		}
		utils.JSON(w, http.StatusOK, s)
	}
}
