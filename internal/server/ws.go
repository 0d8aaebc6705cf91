package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/musclemap/internal/server/api"
	"github.com/ayusman/musclemap/internal/store"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MaxMessageSize bounds one incoming live frame.
const MaxMessageSize = 1 << 20

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type liveError struct {
	Error string `json:"error"`
}

// LiveHandler scores frames streamed over a WebSocket. Each text message is
// one frame and each reply is the scored result of that frame.
type LiveHandler struct {
	registry *api.Registry
	logger   *zap.Logger
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(reg *api.Registry, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{registry: reg, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests on /api/sessions/{id}/live.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "live" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := parts[0]
	if err := h.registry.Open(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to open session", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxMessageSize)

	logger := h.logger.With(zap.String("session", id))
	logger.Debug("live client connected")
	defer logger.Debug("live client disconnected")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("live read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply := h.score(id, data)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("live write failed", zap.Error(err))
			return
		}
	}
}

// score scores one message, returning the result or an error reply.
func (h *LiveHandler) score(id string, data []byte) any {
	var in api.FrameInput
	if err := json.Unmarshal(data, &in); err != nil {
		return liveError{Error: "invalid frame: " + err.Error()}
	}

	results, err := h.registry.Score(id, []api.FrameInput{in})
	if err != nil {
		if !errors.Is(err, api.ErrMissingLandmarks) {
			h.logger.Error("live scoring failed", zap.String("session", id), zap.Error(err))
		}
		return liveError{Error: err.Error()}
	}
	return results[0]
}
