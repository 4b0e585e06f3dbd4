package handlers

import (
	"net/http"

	"returns-backend/internal/repositories"
)

type AdminActionLogHandler struct {
	Repo *repositories.AdminActionLogRepository
}

func NewAdminActionLogHandler(repo *repositories.AdminActionLogRepository) *AdminActionLogHandler {
	return &AdminActionLogHandler{Repo: repo}
}

// ListActionLogs returns the audit trail (admin only)
func (h *AdminActionLogHandler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Repo.ListActionLogs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, logs)
}
