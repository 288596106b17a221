package generate

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler - 비디오 생성 트리거 API 핸들러
type Handler struct {
	service *Service
}

// NewHandler - Handler 생성
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/content/{contentId}/generate", h.Generate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/content/{contentId}/generate/status", h.Status).Methods("GET")
	log.Println("✅ Generate routes registered: POST /api/content/{contentId}/generate")
}

// Generate - POST /api/content/{contentId}/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	contentID := vars["contentId"]

	result, err := h.service.GenerateVideos(r.Context(), contentID)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrBusy) {
			status = http.StatusConflict
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":          true,
		"content_item_id":  result.ContentItemID,
		"scenes_processed": result.ScenesProcessed,
	})
}

// Status - GET /api/content/{contentId}/generate/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	contentID := vars["contentId"]

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"content_item_id": contentID,
		"is_generating":   h.service.IsGenerating(contentID),
	})
}
