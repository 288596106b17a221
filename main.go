package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"cadence-scheduler-server/modules/checkout"
	"cadence-scheduler-server/modules/common/cache"
	"cadence-scheduler-server/modules/common/config"
	redisutil "cadence-scheduler-server/modules/common/redis"
	"cadence-scheduler-server/modules/common/supabase"
	"cadence-scheduler-server/modules/content"
	"cadence-scheduler-server/modules/generate"
	"cadence-scheduler-server/modules/pipeline"
	"cadence-scheduler-server/modules/realtime"
	"cadence-scheduler-server/modules/schedule"
	"cadence-scheduler-server/modules/storage"
)

// enableCORS - CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthCheck - 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "cadence-scheduler",
	})
}

func main() {
	// 환경변수 로드 (필수값 누락 시 기동 실패)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Supabase 게이트웨이 - 전역 싱글톤 대신 명시적으로 생성해서 주입
	gw, err := supabase.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create Supabase gateway: %v", err)
	}

	// Redis 연결 (생성 큐 + 취소 플래그)
	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Fatal("❌ Failed to connect to Redis")
	}

	// 공유 컴포넌트
	queryCache := cache.New(cfg.CacheStale)
	hub := realtime.NewHub()
	uploader := storage.NewUploader(cfg.SupabaseURL, cfg.SupabaseStorageBaseURL, cfg.SupabaseServiceKey)

	// 서비스
	contentService := content.NewService(gw, queryCache)
	poller := content.NewPoller(contentService, hub, cfg.PollInterval)
	checkoutService := checkout.NewService(gw, hub)
	generateService := generate.NewService(gw, queryCache)

	// 파이프라인 워커 시작 (백그라운드)
	pipelineStore := pipeline.NewStore(gw)
	worker := pipeline.NewWorker(cfg, rdb, pipelineStore, contentService, uploader)
	go worker.Start()

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")

	content.NewHandler(contentService, poller).RegisterRoutes(r)
	checkout.NewHandler(checkoutService).RegisterRoutes(r)
	generate.NewHandler(generateService).RegisterRoutes(r)
	schedule.NewHandler().RegisterRoutes(r)
	pipeline.NewEnqueueHandler(rdb).RegisterRoutes(r)
	pipeline.NewCancelHandler(rdb, gw).RegisterRoutes(r)
	hub.RegisterRoutes(r)

	log.Printf("🚀 Cadence Scheduler Server starting on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)

	// 서버 시작
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
