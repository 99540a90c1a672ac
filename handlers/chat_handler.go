package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kvitka-shop/flower-bot/models"
	"github.com/kvitka-shop/flower-bot/session"
)

const turnTimeout = 60 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow connections from any origin
	},
}

// ChatMessage is one inbound websocket event: a text message, a
// callback button press (Data carries the opaque payload), or a ping.
type ChatMessage struct {
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	Data      string    `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type outboundMessage struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	Photo     string     `json:"photo,omitempty"`
	Caption   string     `json:"caption,omitempty"`
	Buttons   [][]Button `json:"buttons,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// wsResponder implements Responder over one websocket connection,
// serializing writes.
type wsResponder struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (r *wsResponder) send(msg outboundMessage) error {
	msg.Timestamp = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.WriteJSON(msg)
}

func (r *wsResponder) SendText(ctx context.Context, text string) error {
	return r.send(outboundMessage{Type: "text", Text: text})
}

func (r *wsResponder) SendPhoto(ctx context.Context, photoURL, caption string) error {
	return r.send(outboundMessage{Type: "photo", Photo: photoURL, Caption: caption})
}

func (r *wsResponder) SendKeyboard(ctx context.Context, text string, buttons [][]Button) error {
	return r.send(outboundMessage{Type: "keyboard", Text: text, Buttons: buttons})
}

// ChatHandler owns the websocket chat endpoint and the per-session turn
// discipline: at most one in-flight turn per session id.
type ChatHandler struct {
	store  session.Store
	dialog *DialogHandler

	locks sync.Map // session id -> *sync.Mutex
}

func NewChatHandler(store session.Store, dialog *DialogHandler) *ChatHandler {
	return &ChatHandler{
		store:  store,
		dialog: dialog,
	}
}

// HandleChat upgrades the connection and runs the message loop. The
// session id comes from the user_id query parameter so state survives
// reconnects; anonymous connections get a fresh id.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Error("Failed to upgrade to websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("user_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	logger := zap.L().With(zap.String("session_id", sessionID))
	logger.Info("New chat session started")

	out := &wsResponder{conn: conn}

	for {
		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case "text":
			text := msg.Text
			h.runTurn(sessionID, logger, out, func(ctx context.Context, sess *models.SessionState) error {
				return h.dialog.HandleText(ctx, sess, out, text)
			})
		case "callback":
			payload := msg.Data
			h.runTurn(sessionID, logger, out, func(ctx context.Context, sess *models.SessionState) error {
				return h.dialog.HandleCallback(ctx, sess, out, payload)
			})
		case "ping":
			_ = out.send(outboundMessage{Type: "pong"})
		default:
			logger.Warn("Unknown message type", zap.String("type", msg.Type))
		}
	}

	logger.Info("Chat session ended")
}

// runTurn executes one conversation turn: state read, handler, state
// write-back. The per-session mutex is held for the whole turn so a
// second message for the same session cannot interleave. A failed send
// aborts the turn; state already written stands.
func (h *ChatHandler) runTurn(sessionID string, logger *zap.Logger, out Responder, fn func(context.Context, *models.SessionState) error) {
	muAny, _ := h.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	sess, err := h.store.Get(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to load session", zap.Error(err))
		_ = out.SendText(ctx, replyServerUnavailable)
		return
	}
	if sess == nil {
		sess = models.NewSessionState(sessionID)
	}

	if err := fn(ctx, sess); err != nil {
		logger.Error("Turn aborted", zap.Error(err))
		return
	}

	if err := h.store.Put(ctx, sess); err != nil {
		logger.Error("Failed to persist session", zap.Error(err))
	}
}

// HealthCheckHandler reports process liveness.
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
