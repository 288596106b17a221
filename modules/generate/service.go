package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"cadence-scheduler-server/modules/common/cache"
	"cadence-scheduler-server/modules/common/supabase"
)

// 호출되는 Edge Function 이름
const functionGenerateSceneVideos = "generate-scene-videos"

// 사용자에게 보여줄 일반 실패 문구
const genericFailureMessage = "Failed to start video generation. Please try again."

// ErrBusy - 해당 content item의 생성 요청이 이미 진행 중
var ErrBusy = errors.New("generation already in progress for this content item")

// Invalidator - 캐시 무효화 인터페이스
type Invalidator interface {
	Invalidate(key string)
}

// GenerateRequest - generate-scene-videos 요청 본문
type GenerateRequest struct {
	ContentItemID string `json:"contentItemId"`
}

// GenerateResponse - generate-scene-videos 응답 본문
type GenerateResponse struct {
	ScenesProcessed int `json:"scenesProcessed,omitempty"`
}

// GenerateResult - 트리거 성공 결과
type GenerateResult struct {
	ContentItemID   string `json:"content_item_id"`
	ScenesProcessed int    `json:"scenes_processed"`
}

// Service - 비디오 생성 트리거 서비스
type Service struct {
	gw    *supabase.Gateway
	cache Invalidator

	mu      sync.Mutex
	pending map[string]bool
}

// NewService - Service 생성
func NewService(gw *supabase.Gateway, c Invalidator) *Service {
	return &Service{
		gw:      gw,
		cache:   c,
		pending: make(map[string]bool),
	}
}

// IsGenerating - content item별 진행 중 여부 (UI 버튼 비활성화용)
func (s *Service) IsGenerating(contentItemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[contentItemID]
}

// GenerateVideos - generate-scene-videos Edge Function 호출
// 성공 시 목록/상세 캐시를 각각 1회 무효화하고 큐잉된 scene 수를 반환
// 실패 시 캐시는 그대로 두고 에러 반환 (자동 재시도 없음)
func (s *Service) GenerateVideos(ctx context.Context, contentItemID string) (*GenerateResult, error) {
	if contentItemID == "" {
		return nil, fmt.Errorf("contentItemId is required")
	}

	s.mu.Lock()
	if s.pending[contentItemID] {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.pending[contentItemID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, contentItemID)
		s.mu.Unlock()
	}()

	log.Printf("🎬 Triggering video generation for content item: %s", contentItemID)

	var resp GenerateResponse
	err := s.gw.InvokeFunction(ctx, functionGenerateSceneVideos, GenerateRequest{ContentItemID: contentItemID}, &resp)
	if err != nil {
		log.Printf("❌ [Generate] generate-scene-videos failed: %v", err)
		return nil, describeFailure(err)
	}

	// 성공 시에만 로컬 캐시 무효화 - 이후 조회는 refetch
	s.cache.Invalidate(cache.KeyContentItems)
	s.cache.Invalidate(cache.KeyContentItemWithScenes(contentItemID))

	log.Printf("✅ Video generation queued: %s (%d scenes)", contentItemID, resp.ScenesProcessed)

	return &GenerateResult{
		ContentItemID:   contentItemID,
		ScenesProcessed: resp.ScenesProcessed,
	}, nil
}

// describeFailure - 원격 메시지 보존, 비어 있으면 일반 문구
func describeFailure(err error) error {
	if err == nil || err.Error() == "" {
		return errors.New(genericFailureMessage)
	}
	return err
}
