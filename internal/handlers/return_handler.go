package handlers

import (
	"encoding/json"
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
	"returns-backend/internal/timeutil"
)

type ReturnHandler struct {
	Service         *services.ReturnService
	PDF             *services.DocumentPDFService
	Archive         *services.ArchiveService
	AdminActionRepo *repositories.AdminActionLogRepository
}

func NewReturnHandler(
	service *services.ReturnService,
	pdf *services.DocumentPDFService,
	archive *services.ArchiveService,
	adminActionRepo *repositories.AdminActionLogRepository,
) *ReturnHandler {
	return &ReturnHandler{
		Service:         service,
		PDF:             pdf,
		Archive:         archive,
		AdminActionRepo: adminActionRepo,
	}
}

// ListReturns returns records, filtered by ?status= and ?disposition=.
// The unfiltered listing is cached briefly; filtered views go straight
// to the database.
func (h *ReturnHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	status := models.ReturnStatus(r.URL.Query().Get("status"))
	disposition := models.Disposition(r.URL.Query().Get("disposition"))

	if status == "" && disposition == "" {
		if data, ok := cache.GetCached(r.Context(), cache.ReturnsListKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	records, err := h.Service.List(r.Context(), status, disposition)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*models.ReturnRecord{}
	}

	if status == "" && disposition == "" {
		if data, err := json.Marshal(records); err == nil {
			cache.SetCached(r.Context(), cache.ReturnsListKey, data, time.Minute)
		}
	}
	writeJSON(w, http.StatusOK, records)
}

// GetReturn returns one record
func (h *ReturnHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CreateReturn registers a new return request
func (h *ReturnHandler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateReturnCaches(r.Context())
	writeJSON(w, http.StatusCreated, rec)
}

// ReceiveReturn marks an item as arrived at the warehouse
func (h *ReturnHandler) ReceiveReturn(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Receive(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateReturnCaches(r.Context())
	writeJSON(w, http.StatusOK, rec)
}

// GradeReturn records the QC inspection outcome
func (h *ReturnHandler) GradeReturn(w http.ResponseWriter, r *http.Request) {
	var req models.GradeReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.Grade(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateReturnCaches(r.Context())
	writeJSON(w, http.StatusOK, rec)
}

// DocumentReturns documents a batch of graded records and generates the
// return note. The note is archived best-effort; a failed upload never
// fails the request.
func (h *ReturnHandler) DocumentReturns(w http.ResponseWriter, r *http.Request) {
	var req models.DocumentBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.DocumentBatch(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateReturnCaches(r.Context())

	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		ipAddress := getIPAddress(r)
		h.AdminActionRepo.CreateActionLog(r.Context(), &models.AdminActionLog{
			AdminUserID: userID,
			ActionType:  "DOCUMENT",
			TargetType:  "return_batch",
			Description: fmt.Sprintf("Documented %d/%d returns (%s, net %s)", result.Documented, len(req.IDs), req.Disposition, result.Net),
			IPAddress:   &ipAddress,
		})
	}

	// Render and archive the note for the records that committed.
	var documented []*models.ReturnRecord
	for _, id := range req.IDs {
		if contains(result.FailedIDs, id) {
			continue
		}
		if rec, err := h.Service.Get(r.Context(), id); err == nil {
			documented = append(documented, rec)
		}
	}
	if len(documented) > 0 {
		if pdf, err := h.PDF.RenderReturnNote(documented, result, req.Disposition); err == nil {
			metrics.DocumentsGenerated.WithLabelValues("return_note").Inc()
			name := fmt.Sprintf("return-note-%s-%s", req.Disposition, timeutil.Now().Format("20060102-150405"))
			h.Archive.StorePDF(r.Context(), name, pdf)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// CompleteReturn closes out a documented record
func (h *ReturnHandler) CompleteReturn(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	cache.InvalidateReturnCaches(r.Context())
	writeJSON(w, http.StatusOK, rec)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
