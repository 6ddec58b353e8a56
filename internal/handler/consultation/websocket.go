package consultation

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	consultationService "github.com/salt-byte/cinematic-mirror/backend/internal/service/consultation"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/utils"
)

const (
	defaultPongWait = 60 * time.Second
	writeWait       = 10 * time.Second
)

// WebSocketHandler 咨询会话的WebSocket通道
type WebSocketHandler struct {
	svc      *consultationService.Service
	upgrader websocket.Upgrader
	// pongWait is how long the socket may stay silent while idle. Pings go out at 9/10 of it.
	pongWait time.Duration
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(svc *consultationService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		svc:      svc,
		pongWait: defaultPongWait,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/session/{sessionID}/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接。关闭连接不会结束会话。
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.svc.Session(sessionID); err != nil {
		utils.RespondServiceError(w, "websocket", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	go h.pingLoop(ctx, conn)

	h.send(conn, outgoingMessage{Type: "connected", SessionID: sessionID})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error session=%s: %v", sessionID, err)
			}
			return
		}

		switch msg.Type {
		case "message":
			// 模型调用期间不读取，pong 无法续期，先取消读超时
			_ = conn.SetReadDeadline(time.Time{})
			reply, err := h.svc.SendMessage(ctx, sessionID, msg.Text)
			_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			h.send(conn, outgoingMessage{Type: "reply", SessionID: sessionID, Data: reply})
		default:
			_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
			h.sendError(conn, apperror.Validation("UNSUPPORTED_FRAME", "unsupported message type: "+msg.Type))
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().Unix()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, err error) {
	if apperror.StatusOf(err) >= http.StatusInternalServerError {
		log.Printf("[websocket] turn failed: %v", err)
	}
	h.send(conn, outgoingMessage{
		Type: "error",
		Data: map[string]string{
			"code":    apperror.CodeOf(err),
			"message": apperror.MessageOf(err),
		},
	})
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.pongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
