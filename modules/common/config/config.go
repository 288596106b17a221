package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Supabase
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Render API (scene video rendering)
	RenderAPIEndpoint string
	RenderAPIKey      string

	// Gemini API (scene prompt authoring)
	GeminiAPIKeys []string
	GeminiModel   string

	// Server
	Port string

	// Polling / Cache
	PollInterval time.Duration
	CacheStale   time.Duration
}

// Load - 환경변수 로드
// Supabase 접속 정보는 기본값 없이 필수 검증 (누락 시 기동 실패)
func Load() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// Polling 주기 파싱 (기본 3초)
	pollSeconds := 3
	if pollStr := os.Getenv("POLL_INTERVAL_SECONDS"); pollStr != "" {
		if parsed, err := strconv.Atoi(pollStr); err == nil && parsed > 0 {
			pollSeconds = parsed
		}
	}

	// Cache 신선도 기준 파싱 (기본 1초)
	staleSeconds := 1
	if staleStr := os.Getenv("CACHE_STALE_SECONDS"); staleStr != "" {
		if parsed, err := strconv.Atoi(staleStr); err == nil && parsed > 0 {
			staleSeconds = parsed
		}
	}

	// Gemini API 키 파싱 (콤마 구분, 429 대응용 다중 키)
	var geminiKeys []string
	for _, key := range strings.Split(os.Getenv("GEMINI_API_KEYS"), ",") {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			geminiKeys = append(geminiKeys, trimmed)
		}
	}

	cfg := &Config{
		// Supabase (기본값 없음 - validate에서 검증)
		SupabaseURL:            os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey:     os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseStorageBaseURL: os.Getenv("SUPABASE_STORAGE_BASE_URL"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Render API
		RenderAPIEndpoint: os.Getenv("RENDER_API_ENDPOINT"),
		RenderAPIKey:      os.Getenv("RENDER_API_KEY"),

		// Gemini
		GeminiAPIKeys: geminiKeys,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		// Server
		Port: getEnv("PORT", "8080"),

		// Polling / Cache
		PollInterval: time.Duration(pollSeconds) * time.Second,
		CacheStale:   time.Duration(staleSeconds) * time.Second,
	}

	// Storage 공개 URL 기본값은 Supabase URL에서 유도
	if cfg.SupabaseStorageBaseURL == "" && cfg.SupabaseURL != "" {
		cfg.SupabaseStorageBaseURL = cfg.SupabaseURL + "/storage/v1/object/public/"
	}

	// 필수 환경변수 검증
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Supabase: %s", cfg.SupabaseURL)
	log.Printf("   Redis: %s (TLS: %v)", cfg.GetRedisAddr(), cfg.RedisUseTLS)
	log.Printf("   Polling: every %s (stale after %s)", cfg.PollInterval, cfg.CacheStale)
	log.Printf("   Gemini: %s (%d keys)", cfg.GeminiModel, len(cfg.GeminiAPIKeys))

	return cfg, nil
}

// validate - 필수 환경변수 검증
// 접속 정보 누락은 조용한 기본값 대신 기동 실패로 처리
func (c *Config) validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
