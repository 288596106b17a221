package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"cadence-scheduler-server/modules/common/cache"
	"cadence-scheduler-server/modules/common/model"
	"cadence-scheduler-server/modules/common/supabase"
)

// ErrNotFound - 결합 조회가 정확히 1건과 매칭되지 않음
var ErrNotFound = errors.New("content item not found")

// 결합 조회 컬럼 - scene과 scene video를 한 번에 중첩 조회
const combinedSelect = "*, content_scenes(*, content_scene_videos(*))"

// Service - 콘텐츠 조회 서비스
type Service struct {
	gw    *supabase.Gateway
	cache *cache.Cache
}

// NewService - Service 생성
func NewService(gw *supabase.Gateway, c *cache.Cache) *Service {
	return &Service{
		gw:    gw,
		cache: c,
	}
}

// Fetch - ContentItem 결합 조회 (scene/video 중첩 포함)
// id가 비어 있으면 원격 호출 없이 nil 반환
// 정확히 1건 매칭이 아니면 ErrNotFound
// 신선도 기준 내의 캐시는 그대로 반환 (기준 초과분은 refetch)
func (s *Service) Fetch(ctx context.Context, contentItemID string) (*model.ContentItem, error) {
	if contentItemID == "" {
		return nil, nil
	}

	cacheKey := cache.KeyContentItemWithScenes(contentItemID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if item, ok := cached.(*model.ContentItem); ok {
			return item, nil
		}
	}

	return s.fetchRemote(ctx, contentItemID)
}

// fetchRemote - 결합 조회 원격 호출 (캐시 확인 없이 항상 재조회)
// 폴러가 이 경로를 쓴다 - 폴러 자신이 캐시를 채우는 쪽이므로 캐시를 거치면 안 됨
// 결과는 캐시에 기록해서 수동 조회가 신선한 스냅샷을 받게 한다
func (s *Service) fetchRemote(ctx context.Context, contentItemID string) (*model.ContentItem, error) {
	log.Printf("🔍 Fetching content item: %s", contentItemID)

	data, err := s.executeQuery(ctx, func() ([]byte, int64, error) {
		return s.gw.From("content_items").
			Select(combinedSelect, "", false).
			Eq("id", contentItemID).
			Execute()
	})

	if err != nil {
		// 원격 에러는 가공 없이 전파
		return nil, fmt.Errorf("failed to query content item: %w", err)
	}

	var items []model.ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse content item response: %w", err)
	}

	if len(items) != 1 {
		log.Printf("❌ Content item %s matched %d rows", contentItemID, len(items))
		return nil, fmt.Errorf("%w: %s (matched %d rows)", ErrNotFound, contentItemID, len(items))
	}

	item := &items[0]

	// scene_number가 표시 순서를 정의한다
	item.SortScenes()

	s.cache.Set(cache.KeyContentItemWithScenes(contentItemID), item)

	log.Printf("✅ Content item fetched: %s (status: %s, stage: %s, scenes: %d)",
		item.ID, item.VideoStatus, item.GenerationStage, len(item.Scenes))

	return item, nil
}

// queryResult - executeQuery 결과 전달용
type queryResult struct {
	data []byte
	err  error
}

// executeQuery - PostgREST 쿼리를 ctx 마감과 함께 실행
// postgrest-go의 Execute()는 context를 받지 않으므로 이 레이어에서 마감을 건다
// 마감 초과 시 진행 중 요청은 버려진다 (응답이 와도 무시)
func (s *Service) executeQuery(ctx context.Context, run func() ([]byte, int64, error)) ([]byte, error) {
	done := make(chan queryResult, 1)

	go func() {
		data, _, err := run()
		done <- queryResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("query cancelled: %w", ctx.Err())
	case result := <-done:
		return result.data, result.err
	}
}

// List - ContentItem 목록 조회 (중첩 없음)
func (s *Service) List(ctx context.Context) ([]model.ContentItemSummary, error) {
	if cached, ok := s.cache.Get(cache.KeyContentItems); ok {
		if items, ok := cached.([]model.ContentItemSummary); ok {
			return items, nil
		}
	}

	log.Printf("🔍 Fetching content item list")

	data, err := s.executeQuery(ctx, func() ([]byte, int64, error) {
		return s.gw.From("content_items").
			Select("id, title, video_status, generation_stage, created_at, updated_at", "", false).
			Execute()
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}

	var items []model.ContentItemSummary

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse content items response: %w", err)
	}

	s.cache.Set(cache.KeyContentItems, items)

	log.Printf("✅ Content item list fetched: %d items", len(items))
	return items, nil
}
