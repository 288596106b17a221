package pipeline

import (
	"encoding/json"
	"fmt"
	"log"

	"cadence-scheduler-server/modules/common/model"
	"cadence-scheduler-server/modules/common/supabase"
)

// Store - 파이프라인 전용 DB 쓰기
// content 엔티티의 상태 전이는 전부 이쪽(서버 프로세스)에서만 일어난다
type Store struct {
	gw *supabase.Gateway
}

// NewStore - Store 생성
func NewStore(gw *supabase.Gateway) *Store {
	return &Store{gw: gw}
}

// UpdateContentStatus - content item 상태/스테이지 업데이트
func (s *Store) UpdateContentStatus(contentItemID, status, stage string) error {
	log.Printf("📝 Updating content %s: status=%s, stage=%s", contentItemID, status, stage)

	updateData := map[string]interface{}{
		"video_status":     status,
		"generation_stage": stage,
		"updated_at":       "now()",
	}

	_, _, err := s.gw.From("content_items").
		Update(updateData, "", "").
		Eq("id", contentItemID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update content status: %w", err)
	}
	return nil
}

// MarkSceneVideoCompleted - scene video 성공 처리
// video_url만 채우고 error_message는 비운다 (둘 다 채워지는 일은 없어야 함)
func (s *Store) MarkSceneVideoCompleted(sceneVideoID, videoURL string) error {
	updateData := map[string]interface{}{
		"video_status":  model.StatusCompleted,
		"video_url":     videoURL,
		"error_message": nil,
	}

	_, _, err := s.gw.From("content_scene_videos").
		Update(updateData, "", "").
		Eq("id", sceneVideoID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark scene video completed: %w", err)
	}

	log.Printf("✅ Scene video %s completed: %s", sceneVideoID, videoURL)
	return nil
}

// MarkSceneVideoFailed - scene video 실패 처리
// error_message만 채우고 video_url은 비운다
func (s *Store) MarkSceneVideoFailed(sceneVideoID, errorMessage string) error {
	updateData := map[string]interface{}{
		"video_status":  model.StatusFailed,
		"video_url":     nil,
		"error_message": errorMessage,
	}

	_, _, err := s.gw.From("content_scene_videos").
		Update(updateData, "", "").
		Eq("id", sceneVideoID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark scene video failed: %w", err)
	}

	log.Printf("❌ Scene video %s failed: %s", sceneVideoID, errorMessage)
	return nil
}

// CreateSceneVideo - scene video 레코드 생성 (pending 상태)
func (s *Store) CreateSceneVideo(sceneID string) (string, error) {
	insertData := map[string]interface{}{
		"content_scene_id": sceneID,
		"video_status":     model.StatusPending,
	}

	data, _, err := s.gw.From("content_scene_videos").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return "", fmt.Errorf("failed to insert scene video record: %w", err)
	}

	var videos []model.ContentSceneVideo
	if err := json.Unmarshal(data, &videos); err != nil {
		return "", fmt.Errorf("failed to parse scene video response: %w", err)
	}

	if len(videos) == 0 {
		return "", fmt.Errorf("no scene video record returned")
	}

	log.Printf("💾 Scene video record created: %s (scene: %s)", videos[0].ID, sceneID)
	return videos[0].ID, nil
}
