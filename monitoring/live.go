package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventType 实时事件类型
type EventType string

const (
	EventClassification EventType = "classification"
	EventHeartbeat      EventType = "heartbeat"
)

// Event 推送给前端的实时消息(LiveCounter等)
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// ClassificationEvent 单次分类的摘要
type ClassificationEvent struct {
	CandidateIdentifier string  `json:"candidateIdentifier"`
	IsExoplanet         bool    `json:"isExoplanet"`
	Confidence          float64 `json:"confidence"`
	Degraded            bool    `json:"degraded"`
}

// LiveHub 管理websocket客户端并广播分类事件
type LiveHub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]chan []byte
	upgrader websocket.Upgrader
	log      *zap.Logger
	total    int64
}

func NewLiveHub(log *zap.Logger) *LiveHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &LiveHub{
		clients: make(map[*websocket.Conn]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 生产环境应收紧origin检查
			},
		},
		log: log,
	}
}

// ServeWS 升级连接并开始推送
func (h *LiveHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	send := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go h.writeLoop(conn, send)
	go h.readLoop(conn)
}

func (h *LiveHub) writeLoop(conn *websocket.Conn, send chan []byte) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		h.drop(conn)
	}()
	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			heartbeat, _ := json.Marshal(Event{Type: EventHeartbeat, Timestamp: time.Now()})
			if err := conn.WriteMessage(websocket.TextMessage, heartbeat); err != nil {
				return
			}
		}
	}
}

func (h *LiveHub) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *LiveHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()
	conn.Close()
}

// BroadcastClassification 向所有客户端推送一次分类结果
func (h *LiveHub) BroadcastClassification(ev ClassificationEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	msg, err := json.Marshal(Event{Type: EventClassification, Timestamp: time.Now(), Data: data})
	if err != nil {
		return
	}

	h.mu.Lock()
	h.total++
	for conn, send := range h.clients {
		select {
		case send <- msg:
		default:
			// 慢客户端直接丢弃
			delete(h.clients, conn)
			close(send)
			conn.Close()
		}
	}
	h.mu.Unlock()
}

// ClientCount 当前连接数
func (h *LiveHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
