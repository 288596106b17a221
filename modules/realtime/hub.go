package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"cadence-scheduler-server/modules/common/model"
)

// 이벤트 타입
const (
	EventContentUpdate = "content_update"
	EventContentError  = "content_error"
	EventCheckoutReady = "checkout_ready"
	EventNotifyError   = "error"
)

// Event - 클라이언트로 전송되는 메시지
type Event struct {
	Type          string             `json:"type"`
	ContentItemID string             `json:"contentItemId,omitempty"`
	Item          *model.ContentItem `json:"item,omitempty"`
	URL           string             `json:"url,omitempty"`
	Message       string             `json:"message,omitempty"`
}

// client - 연결된 클라이언트
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	contentID string // "" 이면 전체 이벤트 구독
}

// Hub - WebSocket 구독 허브
// 폴링 스냅샷과 사용자 알림을 브라우저로 밀어준다
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool

	upgrader websocket.Upgrader
}

// NewHub - Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 개발용 - 모든 origin 허용
				return true
			},
		},
	}
}

// RegisterRoutes - 라우트 등록
func (h *Hub) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.HandleWebSocket)
	log.Println("✅ Realtime route registered: /ws")
}

// HandleWebSocket - WebSocket 연결 핸들러
// ?content=<id> 쿼리로 특정 content item만 구독할 수 있다
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{
		conn:      conn,
		send:      make(chan []byte, 64),
		contentID: r.URL.Query().Get("content"),
	}

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("👤 Realtime client connected (content: %q, total: %d)", c.contentID, count)

	go c.writePump()
	go h.readPump(c)
}

// readPump - 클라이언트 연결 해제 감지용 (수신 메시지는 무시)
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump - 클라이언트로 메시지 쓰기
func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// remove - 클라이언트 제거
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
		c.conn.Close()
		log.Printf("👋 Realtime client disconnected (remaining: %d)", len(h.clients))
	}
}

// broadcast - 이벤트 전송
// contentID가 지정된 이벤트는 해당 구독자와 전체 구독자에게만 전달
func (h *Hub) broadcast(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if event.ContentItemID != "" && c.contentID != "" && c.contentID != event.ContentItemID {
			continue
		}
		select {
		case c.send <- message:
		default:
			// 느린 클라이언트는 끊는다
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// ContentUpdate - 폴링 스냅샷 전달 (content.Sink 구현)
func (h *Hub) ContentUpdate(contentItemID string, item *model.ContentItem, fetchErr error) {
	if fetchErr != nil {
		h.broadcast(Event{
			Type:          EventContentError,
			ContentItemID: contentItemID,
			Message:       fetchErr.Error(),
		})
		return
	}
	h.broadcast(Event{
		Type:          EventContentUpdate,
		ContentItemID: contentItemID,
		Item:          item,
	})
}

// CheckoutReady - 결제 페이지 URL 전달 (checkout.Notifier 구현)
func (h *Hub) CheckoutReady(url string) {
	h.broadcast(Event{
		Type: EventCheckoutReady,
		URL:  url,
	})
}

// NotifyError - 사용자 노출 에러 알림 (checkout.Notifier 구현)
func (h *Hub) NotifyError(message string) {
	h.broadcast(Event{
		Type:    EventNotifyError,
		Message: message,
	})
}
