package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/year-bingo/tracker/internal/models"
	"github.com/year-bingo/tracker/internal/services"
)

type BingoDataHandler struct {
	bingoService services.BingoDataServiceInterface
}

func NewBingoDataHandler(bingoService services.BingoDataServiceInterface) *BingoDataHandler {
	return &BingoDataHandler{bingoService: bingoService}
}

func (h *BingoDataHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.bingoService.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrBingoDataNotFound) {
		writeError(w, http.StatusNotFound, "Bingo data not found")
		return
	}
	if err != nil {
		log.Printf("Error getting bingo data: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (h *BingoDataHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var params models.ReplaceBingoDataParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	data, err := h.bingoService.Replace(r.Context(), r.PathValue("id"), params)
	if errors.Is(err, services.ErrMissingUserName) || errors.Is(err, services.ErrMissingYear) || errors.Is(err, services.ErrInvalidItemCount) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, services.ErrBingoDataNotFound) {
		writeError(w, http.StatusNotFound, "Bingo data not found")
		return
	}
	if err != nil {
		log.Printf("Error replacing bingo data: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, data)
}
