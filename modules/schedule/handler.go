package schedule

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler - 게시 주기 카탈로그 API 핸들러
type Handler struct{}

// NewHandler - Handler 생성
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/schedule-options", h.ListOptions).Methods("GET")
	r.HandleFunc("/api/schedule-options/{value}/grid", h.GetGrid).Methods("GET")
	log.Println("✅ Schedule routes registered: /api/schedule-options")
}

// ListOptions - GET /api/schedule-options
func (h *Handler) ListOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"options": Options,
	})
}

// GetGrid - GET /api/schedule-options/{value}/grid
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	value := vars["value"]

	grid, ok := BuildWeeklyGrid(value)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "unknown schedule option: " + value,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(grid)
}
