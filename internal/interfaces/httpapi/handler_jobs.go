package httpapi

import (
	"fmt"
	"net/http"

	"github.com/matchdayhq/matchday/internal/usecase"
)

func (h *Handler) RunVotingSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunVotingSweepJob")
	defer span.End()

	if h.windowService == nil {
		writeError(ctx, w, fmt.Errorf("%w: voting window service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.windowService.Sweep(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "voting sweep job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRebuildAggregatesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRebuildAggregatesJob")
	defer span.End()

	if h.statsService == nil {
		writeError(ctx, w, fmt.Errorf("%w: stats service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	if err := h.statsService.Rebuild(ctx); err != nil {
		h.logger.WarnContext(ctx, "rebuild aggregates job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "rebuilt"})
}
