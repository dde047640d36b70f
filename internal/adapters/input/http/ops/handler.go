package ops

import (
	"log/slog"
	"net/http"
	"strings"

	"backoffice-events/internal/domain/state"
	"backoffice-events/pkg/logattr"
)

// Handler serves the latest dashboard rollups straight from the state
// store. The endpoint is read only.
type Handler struct {
	store  state.Store
	logger *slog.Logger
}

func NewHandler(store state.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/stats/")
	key, ok := statsKey(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	raw, found, err := h.store.Get(r.Context(), key)
	if err != nil {
		h.logger.Error(
			"failed getting stats",
			logattr.Error(err.Error()),
			logattr.StateKey(key),
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, writeErr := w.Write(raw)
	if writeErr != nil {
		h.logger.Error("failed writing stats response", logattr.Error(writeErr.Error()))
	}
}

func statsKey(name string) (string, bool) {
	switch key := name + "-stats"; key {
	case state.KeyProductStats, state.KeyOrderStats, state.KeyUserStats, state.KeyRealtimeStats:
		return key, true
	default:
		return "", false
	}
}
