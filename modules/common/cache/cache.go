package cache

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// 캐시 키 - 전 모듈 공유
const KeyContentItems = "content-items"

// KeyContentItemWithScenes - 상세 조회 캐시 키 생성
func KeyContentItemWithScenes(contentItemID string) string {
	return fmt.Sprintf("content-item-with-scenes:%s", contentItemID)
}

type entry struct {
	value     interface{}
	fetchedAt time.Time
}

// Cache - 조회 결과 캐시
// staleAfter보다 오래된 엔트리는 반환하지 않는다 (수동 재조회 시 신선도 보장)
// Invalidate가 이 레이어의 유일한 쓰기
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	staleAfter time.Duration
	now        func() time.Time
}

// New - Cache 생성
func New(staleAfter time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Get - 신선한 엔트리만 반환
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) > c.staleAfter {
		return nil, false
	}
	return e.value, true
}

// Set - 조회 결과 저장
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, fetchedAt: c.now()}
}

// Invalidate - 캐시 무효화 (다음 조회는 강제 refetch)
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		log.Printf("🗑️  Cache invalidated: %s", key)
	}
}
