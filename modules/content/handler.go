package content

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler - 콘텐츠 조회 API 핸들러
type Handler struct {
	service *Service
	poller  *Poller
}

// NewHandler - Handler 생성
func NewHandler(service *Service, poller *Poller) *Handler {
	return &Handler{
		service: service,
		poller:  poller,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/content", h.ListContent).Methods("GET")
	r.HandleFunc("/api/content/{contentId}", h.GetContent).Methods("GET")
	r.HandleFunc("/api/content/{contentId}/watch", h.WatchContent).Methods("POST")
	r.HandleFunc("/api/content/{contentId}/unwatch", h.UnwatchContent).Methods("POST")
	log.Println("✅ Content routes registered: /api/content")
}

// ListContent - GET /api/content
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		log.Printf("❌ [Content] List failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items": items,
	})
}

// GetContent - GET /api/content/{contentId}
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	contentID := vars["contentId"]

	item, err := h.service.Fetch(r.Context(), contentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("❌ [Content] Fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// WatchContent - POST /api/content/{contentId}/watch
func (h *Handler) WatchContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.poller.Watch(vars["contentId"])

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"watching": true,
	})
}

// UnwatchContent - POST /api/content/{contentId}/unwatch
func (h *Handler) UnwatchContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.poller.Unwatch(vars["contentId"])

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"watching": false,
	})
}

// writeError - JSON 에러 응답
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
