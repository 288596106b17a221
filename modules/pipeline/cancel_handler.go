package pipeline

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"

	"cadence-scheduler-server/modules/common/model"
	redisutil "cadence-scheduler-server/modules/common/redis"
	"cadence-scheduler-server/modules/common/supabase"
)

// CancelHandler - 생성 취소 API 핸들러
type CancelHandler struct {
	rdb *goredis.Client
	gw  *supabase.Gateway
}

// NewCancelHandler - CancelHandler 생성
func NewCancelHandler(rdb *goredis.Client, gw *supabase.Gateway) *CancelHandler {
	return &CancelHandler{
		rdb: rdb,
		gw:  gw,
	}
}

// RegisterRoutes - 라우트 등록
func (h *CancelHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/content/{contentId}/cancel", h.CancelGeneration).Methods("POST", "OPTIONS")
	log.Println("✅ Cancel route registered: POST /api/content/{contentId}/cancel")
}

// CancelGeneration - 생성 취소 처리
// 워커는 진행 중인 scene까지만 마치고 중단한다
func (h *CancelHandler) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	contentID := vars["contentId"]

	if contentID == "" {
		http.Error(w, `{"error": "contentId is required"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🛑 [Cancel] Cancel requested for content: %s", contentID)

	// 1. 현재 상태 조회
	var items []model.ContentItemSummary
	_, err := h.gw.From("content_items").
		Select("id, title, video_status, generation_stage, created_at, updated_at", "", false).
		Eq("id", contentID).
		ExecuteTo(&items)

	if err != nil || len(items) == 0 {
		log.Printf("❌ [Cancel] Content not found: %s", contentID)
		http.Error(w, `{"error": "Content item not found"}`, http.StatusNotFound)
		return
	}

	item := items[0]

	// 이미 완료/취소된 생성은 취소 불가
	if item.VideoStatus == model.StatusCompleted || item.VideoStatus == model.StatusUserCancelled {
		log.Printf("⚠️ [Cancel] Content already %s: %s", item.VideoStatus, contentID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         false,
			"message":         "Generation already " + item.VideoStatus,
			"content_item_id": contentID,
			"video_status":    item.VideoStatus,
		})
		return
	}

	// 2. Redis에 취소 플래그 설정
	if err := redisutil.SetGenerationCancelled(h.rdb, contentID); err != nil {
		log.Printf("❌ [Cancel] Failed to set cancel flag: %v", err)
		http.Error(w, `{"error": "Failed to set cancel flag"}`, http.StatusInternalServerError)
		return
	}

	log.Printf("✅ [Cancel] Cancel flag set for content: %s (current status: %s)", contentID, item.VideoStatus)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":         true,
		"message":         "Cancel request sent. Generation will stop after the current scene.",
		"content_item_id": contentID,
		"current_status":  item.VideoStatus,
	})
}
