package handlers

import (
	"log"
	"net/http"

	"github.com/year-bingo/tracker/internal/services"
)

type ActivityHandler struct {
	activityService services.ActivityServiceInterface
}

func NewActivityHandler(activityService services.ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.activityService.Feed(r.Context())
	if err != nil {
		log.Printf("Error building activity feed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, feed)
}
