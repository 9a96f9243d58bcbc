package handlers

import (
	"net/http"
)

type TablesResponse struct {
	CountTables int      `json:"countTables"`
	Missing     []string `json:"missing"`
	Ready       bool     `json:"ready"`
}

func (h *Handlers) TablesHandler(w http.ResponseWriter, r *http.Request) {
	status, err := h.TablesService.SchemaStatus(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, TablesResponse{
		CountTables: status.CountTables,
		Missing:     status.Missing,
		Ready:       status.Ready(),
	}, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.HealthCheck(); err != nil {
			h.Log.Warn("health check failed", "error", err)
			WriteError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
