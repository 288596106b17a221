package model

import (
	"fmt"
	"sort"
	"time"
)

// ContentItem - content_items 테이블 구조 (scene/video 중첩 포함)
type ContentItem struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	VideoStatus     string         `json:"video_status"`
	GenerationStage string         `json:"generation_stage"`
	Scenes          []ContentScene `json:"content_scenes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ContentScene - content_scenes 테이블 구조
type ContentScene struct {
	ID            string              `json:"id"`
	ContentItemID string              `json:"content_item_id"`
	SceneNumber   int                 `json:"scene_number"`
	Description   string              `json:"description"`
	Videos        []ContentSceneVideo `json:"content_scene_videos"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ContentSceneVideo - content_scene_videos 테이블 구조
// VideoURL은 성공 시에만, ErrorMessage는 실패 시에만 채워짐 (동시 불가)
type ContentSceneVideo struct {
	ID             string    `json:"id"`
	ContentSceneID string    `json:"content_scene_id"`
	VideoStatus    string    `json:"video_status"`
	VideoURL       *string   `json:"video_url"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
}

// ContentItemSummary - 목록 조회용 (scene 중첩 없음)
type ContentItemSummary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	VideoStatus     string    `json:"video_status"`
	GenerationStage string    `json:"generation_stage"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// video_status 값
const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)

// generation_stage 값
const (
	StagePromptAuthoring = "prompt_authoring"
	StageRendering       = "rendering"
	StageUploading       = "uploading"
	StageDone            = "done"
)

// SortScenes - scene_number 기준 정렬 (표시 순서 보장)
func (c *ContentItem) SortScenes() {
	sort.Slice(c.Scenes, func(i, j int) bool {
		return c.Scenes[i].SceneNumber < c.Scenes[j].SceneNumber
	})
}

// Validate - scene video 불변식 검증
// video_url과 error_message가 동시에 채워진 레코드는 서버 버그
func (v *ContentSceneVideo) Validate() error {
	if v.VideoURL != nil && *v.VideoURL != "" && v.ErrorMessage != nil && *v.ErrorMessage != "" {
		return fmt.Errorf("scene video %s has both video_url and error_message", v.ID)
	}
	return nil
}
