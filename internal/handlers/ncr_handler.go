package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"returns-backend/internal/cache"
	"returns-backend/internal/metrics"
	"returns-backend/internal/middleware"
	"returns-backend/internal/models"
	"returns-backend/internal/repositories"
	"returns-backend/internal/services"
	"returns-backend/internal/store"
)

type NCRHandler struct {
	Service         *services.NCRService
	Allocator       *services.AllocatorService
	PDF             *services.DocumentPDFService
	Archive         *services.ArchiveService
	AdminActionRepo *repositories.AdminActionLogRepository
}

func NewNCRHandler(
	service *services.NCRService,
	allocator *services.AllocatorService,
	pdf *services.DocumentPDFService,
	archive *services.ArchiveService,
	adminActionRepo *repositories.AdminActionLogRepository,
) *NCRHandler {
	return &NCRHandler{
		Service:         service,
		Allocator:       allocator,
		PDF:             pdf,
		Archive:         archive,
		AdminActionRepo: adminActionRepo,
	}
}

// AllocateNumber reserves the next NCR number. On a conflict-exhausted
// allocation the response carries a provisional display number the
// client may show; it is never persisted.
func (h *NCRHandler) AllocateNumber(w http.ResponseWriter, r *http.Request) {
	num, err := h.Allocator.Allocate(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrAborted) {
			provisional := h.Allocator.Provisional()
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":       err.Error(),
				"provisional": provisional,
				"number":      provisional.String(),
			})
			return
		}
		writeError(w, err)
		return
	}

	metrics.NumbersAllocated.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"number": num.String(),
		"year":   num.Year,
		"seq":    num.Seq,
	})
}

// ListNCRs returns all reports, briefly cached
func (h *NCRHandler) ListNCRs(w http.ResponseWriter, r *http.Request) {
	if data, ok := cache.GetCached(r.Context(), cache.NCRListKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	reports, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []*models.NCRReport{}
	}

	if data, err := json.Marshal(reports); err == nil {
		cache.SetCached(r.Context(), cache.NCRListKey, data, time.Minute)
	}
	writeJSON(w, http.StatusOK, reports)
}

// GetNCR returns one report
func (h *NCRHandler) GetNCR(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// CreateNCR persists a new report under its allocated number
func (h *NCRHandler) CreateNCR(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rep, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateNCRCaches(r.Context())
	writeJSON(w, http.StatusCreated, rep)
}

// UpdateNCR merges a partial field set into a report
func (h *NCRHandler) UpdateNCR(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateNCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rep, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateNCRCaches(r.Context())
	writeJSON(w, http.StatusOK, rep)
}

// CloseNCR records the QA verdict
func (h *NCRHandler) CloseNCR(w http.ResponseWriter, r *http.Request) {
	var req models.CloseNCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rep, err := h.Service.Close(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateNCRCaches(r.Context())
	writeJSON(w, http.StatusOK, rep)
}

// DeleteNCR hard-removes a report (admin only, audited)
func (h *NCRHandler) DeleteNCR(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateNCRCaches(r.Context())

	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		ipAddress := getIPAddress(r)
		h.AdminActionRepo.CreateActionLog(r.Context(), &models.AdminActionLog{
			AdminUserID: userID,
			ActionType:  "DELETE",
			TargetType:  "ncr_report",
			TargetID:    &id,
			Description: fmt.Sprintf("Deleted NCR report %s", id),
			IPAddress:   &ipAddress,
		})
	}

	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// ReturnDraft projects a report into a pre-filled return request
func (h *NCRHandler) ReturnDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.Service.DeriveReturnDraft(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// RenderPDF streams the report as a PDF and archives a copy
func (h *NCRHandler) RenderPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rep, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	pdf, err := h.PDF.RenderNCR(rep)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.DocumentsGenerated.WithLabelValues("ncr").Inc()

	// Best effort; the requester already has the document.
	h.Archive.StorePDF(r.Context(), rep.NCRNo, pdf)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, rep.NCRNo))
	w.Write(pdf)
}
