package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/year-bingo/tracker/internal/models"
	"github.com/year-bingo/tracker/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressServiceInterface
}

func NewProgressHandler(progressService services.ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	progress, err := h.progressService.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrProgressNotFound) {
		writeError(w, http.StatusNotFound, "Progress not found")
		return
	}
	if err != nil {
		log.Printf("Error getting progress: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var patch models.ProgressPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	progress, err := h.progressService.Merge(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		log.Printf("Error merging progress: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) MarkRandomized(w http.ResponseWriter, r *http.Request) {
	progress, err := h.progressService.MarkRandomized(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("Error marking randomized: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	progress, err := h.progressService.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("Error resetting progress: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) GetCell(w http.ResponseWriter, r *http.Request) {
	index, ok := parseCellIndex(w, r)
	if !ok {
		return
	}

	detail, err := h.progressService.GetCell(r.Context(), r.PathValue("id"), index)
	if errors.Is(err, services.ErrInvalidCellIndex) {
		writeError(w, http.StatusBadRequest, "Invalid cell index")
		return
	}
	if errors.Is(err, services.ErrProgressNotFound) {
		writeError(w, http.StatusNotFound, "Progress not found")
		return
	}
	if errors.Is(err, services.ErrCellDetailNotFound) {
		writeError(w, http.StatusNotFound, "Cell detail not found")
		return
	}
	if err != nil {
		log.Printf("Error getting cell detail: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *ProgressHandler) PutCell(w http.ResponseWriter, r *http.Request) {
	index, ok := parseCellIndex(w, r)
	if !ok {
		return
	}

	var detail models.CellDetail
	if err := json.NewDecoder(r.Body).Decode(&detail); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.progressService.PutCell(r.Context(), r.PathValue("id"), index, detail)
	if errors.Is(err, services.ErrInvalidCellIndex) {
		writeError(w, http.StatusBadRequest, "Invalid cell index")
		return
	}
	if err != nil {
		log.Printf("Error putting cell detail: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

func (h *ProgressHandler) DeleteCell(w http.ResponseWriter, r *http.Request) {
	index, ok := parseCellIndex(w, r)
	if !ok {
		return
	}

	err := h.progressService.DeleteCell(r.Context(), r.PathValue("id"), index)
	if errors.Is(err, services.ErrInvalidCellIndex) {
		writeError(w, http.StatusBadRequest, "Invalid cell index")
		return
	}
	if err != nil {
		log.Printf("Error deleting cell detail: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseCellIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cell index")
		return 0, false
	}
	return index, true
}
