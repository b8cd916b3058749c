package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/tetris-server/internal/engine"
	"github.com/DoyleJ11/tetris-server/internal/hub"
	"github.com/DoyleJ11/tetris-server/internal/room"
	"github.com/DoyleJ11/tetris-server/internal/types"
	wire "github.com/DoyleJ11/tetris-server/pkg/types"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUnknownType = errors.New("unknown type")
var ErrUnknownKey = errors.New("unknown key")

type Options struct {
	OriginPatterns []string
	ReadTimeout    time.Duration // 0 means no idle limit
	WriteTimeout   time.Duration
}

func Handler(h *hub.Hub, opts Options, log *zap.Logger) http.HandlerFunc {
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		rm := h.Get(r.Context(), code)
		if rm == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan room.Snapshot, 16)
		clientID := uuid.NewString()
		clog := log.With(zap.String("room", code), zap.String("client", clientID))

		if !rm.Send(r.Context(), room.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "game closed")
			return
		}
		defer rm.Send(context.Background(), room.Leave{ClientID: clientID})
		clog.Info("client connected")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case snap, ok := <-out:
					if !ok {
						// outbox closed: room stopped, dropped us or saw our Leave
						conn.Close(websocket.StatusGoingAway, "game closed")
						return
					}
					if err := writeJSON(writeCtx, conn, types.FrameMessage(snap), opts.WriteTimeout); err != nil {
						clog.Debug("write failed", zap.Error(err))
						return
					}
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			ctx, cancel := readContext(r.Context(), opts.ReadTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					clog.Info("client disconnected")
				default:
					clog.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = writeJSON(r.Context(), conn, types.ErrorMessage("bad json"), opts.WriteTimeout)
				continue
			}

			key, err := toKey(cm)
			if err != nil {
				_ = writeJSON(r.Context(), conn, types.ErrorMessage(err.Error()), opts.WriteTimeout)
				continue
			}

			if !rm.Send(r.Context(), room.Press{Key: key}) {
				return
			}
		}
	}
}

var wireKeys = map[string]engine.Key{
	wire.KeyLeft:    engine.KeyLeft,
	wire.KeyRight:   engine.KeyRight,
	wire.KeyDown:    engine.KeyDown,
	wire.KeyUp:      engine.KeyUp,
	wire.KeyRestart: engine.KeyRestart,
}

func toKey(m types.ClientMessage) (engine.Key, error) {
	switch m.Type {
	case wire.MsgKey:
		key, ok := wireKeys[m.Key]
		if !ok {
			return engine.KeyNone, ErrUnknownKey
		}
		return key, nil
	case wire.MsgRestart:
		return engine.KeyRestart, nil
	default:
		return engine.KeyNone, ErrUnknownType
	}
}

func readContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func writeJSON(parent context.Context, conn *websocket.Conn, msg types.ServerMessage, timeout time.Duration) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
