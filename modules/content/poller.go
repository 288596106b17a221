package content

import (
	"context"
	"log"
	"sync"
	"time"

	"cadence-scheduler-server/modules/common/model"
)

// Sink - 폴링 결과를 받는 쪽 (realtime hub 등)
type Sink interface {
	ContentUpdate(contentItemID string, item *model.ContentItem, fetchErr error)
}

// Poller - 고정 주기 폴링 루프
// 이전 시도의 성공/실패와 무관하게 매 주기 재조회한다
// 서버 푸시 채널 없이도 비동기 진행 상황을 관찰할 수 있게 한다
type Poller struct {
	service  *Service
	sink     Sink
	interval time.Duration

	mu       sync.Mutex
	watchers map[string]chan struct{}
}

// NewPoller - Poller 생성
func NewPoller(service *Service, sink Sink, interval time.Duration) *Poller {
	return &Poller{
		service:  service,
		sink:     sink,
		interval: interval,
		watchers: make(map[string]chan struct{}),
	}
}

// Watch - content item 폴링 시작 (이미 감시 중이면 no-op)
func (p *Poller) Watch(contentItemID string) {
	if contentItemID == "" {
		return
	}

	p.mu.Lock()
	if _, exists := p.watchers[contentItemID]; exists {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	p.watchers[contentItemID] = stop
	p.mu.Unlock()

	log.Printf("👀 Polling started for content item: %s (every %s)", contentItemID, p.interval)

	go p.loop(contentItemID, stop)
}

// Unwatch - 폴링 중단
func (p *Poller) Unwatch(contentItemID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stop, exists := p.watchers[contentItemID]; exists {
		close(stop)
		delete(p.watchers, contentItemID)
		log.Printf("🛑 Polling stopped for content item: %s", contentItemID)
	}
}

// IsWatching - 감시 여부 확인
func (p *Poller) IsWatching(contentItemID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, exists := p.watchers[contentItemID]
	return exists
}

// loop - 폴링 루프 본체
func (p *Poller) loop(contentItemID string, stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// 첫 조회는 즉시
	p.pollOnce(contentItemID)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.pollOnce(contentItemID)
		}
	}
}

// pollOnce - 1회 조회 후 스냅샷 로그 및 sink 전달
// 캐시를 거치지 않고 매번 원격을 재조회한다 - 캐시를 채우는 쪽이 폴러 자신이다
// 실패해도 다음 주기에 다시 시도한다 (폴링 주기 외 재시도 없음)
func (p *Poller) pollOnce(contentItemID string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval*2)
	defer cancel()

	item, err := p.service.fetchRemote(ctx, contentItemID)
	if err != nil {
		log.Printf("❌ Poll failed for %s: %v", contentItemID, err)
		if p.sink != nil {
			p.sink.ContentUpdate(contentItemID, nil, err)
		}
		return
	}

	// 진단용 스냅샷 로그 (scene별 video 개수 포함)
	log.Printf("📊 Poll snapshot: %s", contentItemID)
	log.Printf("   Status: %s, Stage: %s", item.VideoStatus, item.GenerationStage)
	for _, scene := range item.Scenes {
		log.Printf("   Scene %d: %d videos", scene.SceneNumber, len(scene.Videos))
	}

	if p.sink != nil {
		p.sink.ContentUpdate(contentItemID, item, nil)
	}
}
