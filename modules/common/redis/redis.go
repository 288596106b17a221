package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"cadence-scheduler-server/modules/common/config"
)

// 생성 Job 대기열
const QueueVideos = "videos:queue"

// Connect - Redis 연결 생성
func Connect(cfg *config.Config) *redis.Client {
	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	// 관리형 Redis는 TLS 필수 (REDIS_USE_TLS=false로 로컬 개발 시 해제)
	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // 호스팅 Redis의 인증서 체인 이슈 회피
		}
	}

	// BRPOP 대기열 소비자가 같은 연결 설정을 공유한다
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("🔍 Testing Redis connection...")
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v", err)
		return nil
	}

	return rdb
}

// cancelKey - 취소 플래그 키 생성
func cancelKey(contentItemID string) string {
	return fmt.Sprintf("cancel:%s", contentItemID)
}

// SetGenerationCancelled - 생성 취소 플래그 설정 (1시간 유지)
func SetGenerationCancelled(rdb *redis.Client, contentItemID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return rdb.Set(ctx, cancelKey(contentItemID), "1", time.Hour).Err()
}

// IsGenerationCancelled - 생성 취소 여부 확인
func IsGenerationCancelled(rdb *redis.Client, contentItemID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	val, err := rdb.Get(ctx, cancelKey(contentItemID)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}

// ClearGenerationCancelled - 취소 플래그 제거 (처리 종료 후)
func ClearGenerationCancelled(rdb *redis.Client, contentItemID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Del(ctx, cancelKey(contentItemID)).Err(); err != nil {
		log.Printf("⚠️  Failed to clear cancel flag for %s: %v", contentItemID, err)
	}
}
