package pipeline

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"

	redisutil "cadence-scheduler-server/modules/common/redis"
)

// EnqueueHandler - 생성 Job 큐 투입 핸들러
// generate-scene-videos Edge Function이 호출한다
type EnqueueHandler struct {
	rdb *goredis.Client
}

// EnqueueRequest - Enqueue 요청
type EnqueueRequest struct {
	ContentItemID string `json:"content_item_id"`
}

// EnqueueResponse - Enqueue 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	ContentItemID string `json:"content_item_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// NewEnqueueHandler - EnqueueHandler 생성
func NewEnqueueHandler(rdb *goredis.Client) *EnqueueHandler {
	return &EnqueueHandler{
		rdb: rdb,
	}
}

// RegisterRoutes - 라우트 등록
func (h *EnqueueHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/enqueue", h.HandleEnqueue).Methods("POST", "OPTIONS")
	log.Println("✅ Enqueue route registered: POST /api/enqueue")
}

// HandleEnqueue - POST /api/enqueue
func (h *EnqueueHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enqueue] Invalid request: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.ContentItemID == "" {
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "content_item_id is required",
		})
		return
	}

	log.Printf("📥 [Enqueue] Received content item: %s", req.ContentItemID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.rdb.LPush(ctx, redisutil.QueueVideos, req.ContentItemID).Result(); err != nil {
		log.Printf("❌ [Enqueue] Redis LPUSH failed: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	// Queue 길이 조회
	queueLen, _ := h.rdb.LLen(ctx, redisutil.QueueVideos).Result()

	log.Printf("✅ [Enqueue] Content %s enqueued successfully (position: %d)", req.ContentItemID, queueLen)

	json.NewEncoder(w).Encode(EnqueueResponse{
		Success:       true,
		Message:       "Generation job enqueued successfully",
		ContentItemID: req.ContentItemID,
		Queue:         redisutil.QueueVideos,
		QueuePosition: queueLen,
	})
}
