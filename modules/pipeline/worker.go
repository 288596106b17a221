package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"cadence-scheduler-server/modules/common/config"
	"cadence-scheduler-server/modules/common/model"
	redisutil "cadence-scheduler-server/modules/common/redis"
	"cadence-scheduler-server/modules/content"
	"cadence-scheduler-server/modules/storage"
)

// Worker - 비디오 생성 파이프라인 워커
// generate-scene-videos Edge Function이 큐에 넣은 content item을 처리한다
type Worker struct {
	rdb      *goredis.Client
	store    *Store
	contents *content.Service
	author   *PromptAuthor
	renderer *Renderer
	uploader *storage.Uploader

	// 같은 content item의 중복 Job 동시 처리 방지
	mu     sync.Mutex
	active map[string]bool
}

// NewWorker - Worker 생성
func NewWorker(cfg *config.Config, rdb *goredis.Client, store *Store, contents *content.Service, uploader *storage.Uploader) *Worker {
	return &Worker{
		rdb:      rdb,
		store:    store,
		contents: contents,
		author:   NewPromptAuthor(cfg),
		renderer: NewRenderer(cfg),
		uploader: uploader,
		active:   make(map[string]bool),
	}
}

// Start - Redis Queue 감시 시작
func (w *Worker) Start() {
	log.Println("🔄 Video pipeline worker starting...")
	log.Printf("👀 Watching queue: %s", redisutil.QueueVideos)

	ctx := context.Background()

	// 무한 루프로 Queue 감시
	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := w.rdb.BRPop(ctx, 0, redisutil.QueueVideos).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 content item id
		contentItemID := result[1]
		log.Printf("🎯 Received generation job: %s", contentItemID)

		// Job 처리 (goroutine으로 비동기)
		go w.ProcessContentItem(ctx, contentItemID)
	}
}

// ProcessContentItem - content item 하나의 scene 비디오 생성 처리
func (w *Worker) ProcessContentItem(ctx context.Context, contentItemID string) {
	// 같은 item의 중복 큐 엔트리는 하나만 처리
	w.mu.Lock()
	if w.active[contentItemID] {
		w.mu.Unlock()
		log.Printf("⏭️  Content %s is already being processed, skipping duplicate job", contentItemID)
		return
	}
	w.active[contentItemID] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.active, contentItemID)
		w.mu.Unlock()
	}()

	log.Printf("🚀 Processing content item: %s", contentItemID)

	// 처리 전 취소 체크
	if redisutil.IsGenerationCancelled(w.rdb, contentItemID) {
		log.Printf("🛑 Content %s cancelled before processing started", contentItemID)
		w.store.UpdateContentStatus(contentItemID, model.StatusUserCancelled, model.StageDone)
		redisutil.ClearGenerationCancelled(w.rdb, contentItemID)
		return
	}

	item, err := w.contents.Fetch(ctx, contentItemID)
	if err != nil {
		log.Printf("❌ Failed to fetch content %s: %v", contentItemID, err)
		return
	}

	log.Printf("📦 Content Data:")
	log.Printf("   ID: %s", item.ID)
	log.Printf("   Title: %s", item.Title)
	log.Printf("   Status: %s", item.VideoStatus)
	log.Printf("   Scenes: %d", len(item.Scenes))

	// 이미 종결된 item의 재enqueue는 무시 - 완료 상태를 덮어쓰면 안 됨
	if item.VideoStatus == model.StatusCompleted || item.VideoStatus == model.StatusUserCancelled {
		log.Printf("⏭️  Content %s is already %s, ignoring duplicate job", contentItemID, item.VideoStatus)
		return
	}

	if err := w.store.UpdateContentStatus(contentItemID, model.StatusProcessing, model.StagePromptAuthoring); err != nil {
		log.Printf("❌ Failed to mark content processing: %v", err)
		return
	}

	completedCount := 0

	// scene_number 순서대로 처리
	for _, scene := range item.Scenes {
		// scene 사이 취소 체크 - 진행 중 scene까지만 마치고 중단
		if redisutil.IsGenerationCancelled(w.rdb, contentItemID) {
			log.Printf("🛑 Content %s cancelled, stopping after %d completed scenes", contentItemID, completedCount)
			w.store.UpdateContentStatus(contentItemID, model.StatusUserCancelled, model.StageDone)
			redisutil.ClearGenerationCancelled(w.rdb, contentItemID)
			return
		}

		// 이번 실행 전에 이미 성공한 scene도 완료로 집계한다
		if sceneAlreadyCompleted(scene) {
			log.Printf("⏭️  Scene %d: already has a completed video, skipping", scene.SceneNumber)
			completedCount++
			continue
		}

		if w.processScene(ctx, item, scene) {
			completedCount++
		}
	}

	// 최종 완료 처리 - 성공한 scene이 하나라도 있으면 completed
	finalStatus := model.StatusCompleted
	if completedCount == 0 {
		finalStatus = model.StatusFailed
	}

	log.Printf("🏁 Content %s finished: %d/%d scenes completed", contentItemID, completedCount, len(item.Scenes))

	if err := w.store.UpdateContentStatus(contentItemID, finalStatus, model.StageDone); err != nil {
		log.Printf("❌ Failed to update final content status: %v", err)
	}

	redisutil.ClearGenerationCancelled(w.rdb, contentItemID)
}

// processScene - scene 하나 처리 (프롬프트 → 렌더링 → 업로드 → DB 기록)
// 성공 여부 반환
func (w *Worker) processScene(ctx context.Context, item *model.ContentItem, scene model.ContentScene) bool {
	log.Printf("🎬 Scene %d: processing (content: %s)", scene.SceneNumber, item.ID)

	// 대상 scene video 레코드 확보 (없으면 생성)
	sceneVideoID, err := w.targetSceneVideo(scene)
	if err != nil {
		log.Printf("❌ Scene %d: %v", scene.SceneNumber, err)
		return false
	}
	if sceneVideoID == "" {
		log.Printf("⏭️  Scene %d: no pending video record, skipping", scene.SceneNumber)
		return false
	}

	// Phase 1: 렌더링 프롬프트 작성
	prompt := w.author.AuthorScenePrompt(ctx, scene.Description)

	// Phase 2: 렌더링
	w.store.UpdateContentStatus(item.ID, model.StatusProcessing, model.StageRendering)

	videoData, err := w.renderer.Render(ctx, item.ID, scene.SceneNumber, prompt)
	if err != nil {
		log.Printf("❌ Scene %d: render failed: %v", scene.SceneNumber, err)
		w.store.MarkSceneVideoFailed(sceneVideoID, err.Error())
		return false
	}

	// Phase 3: Storage 업로드 (파일명 유일성은 uuid로 보장)
	w.store.UpdateContentStatus(item.ID, model.StatusProcessing, model.StageUploading)

	fileName := fmt.Sprintf("%s/scene-%d-%s.mp4", item.ID, scene.SceneNumber, uuid.New().String())
	_, publicURL, err := w.uploader.Upload(ctx, videoData, fileName)
	if err != nil {
		log.Printf("❌ Scene %d: upload failed: %v", scene.SceneNumber, err)
		w.store.MarkSceneVideoFailed(sceneVideoID, err.Error())
		return false
	}

	// Phase 4: DB 기록
	if err := w.store.MarkSceneVideoCompleted(sceneVideoID, publicURL); err != nil {
		log.Printf("❌ Scene %d: failed to record result: %v", scene.SceneNumber, err)
		return false
	}

	log.Printf("✅ Scene %d completed: %s", scene.SceneNumber, publicURL)
	return true
}

// sceneAlreadyCompleted - 성공한 video를 이미 보유한 scene인지
func sceneAlreadyCompleted(scene model.ContentScene) bool {
	for _, video := range scene.Videos {
		if video.VideoStatus == model.StatusCompleted {
			return true
		}
	}
	return false
}

// targetSceneVideo - 처리할 scene video 레코드 선택
// pending 레코드가 있으면 그걸 쓰고, 레코드가 아예 없으면 새로 만든다
// 이미 완료/실패한 레코드만 있으면 빈 문자열 반환 (재처리 안 함)
func (w *Worker) targetSceneVideo(scene model.ContentScene) (string, error) {
	if len(scene.Videos) == 0 {
		return w.store.CreateSceneVideo(scene.ID)
	}

	for _, video := range scene.Videos {
		if video.VideoStatus == model.StatusPending {
			return video.ID, nil
		}
	}

	return "", nil
}
