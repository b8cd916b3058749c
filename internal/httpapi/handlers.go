package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"github.com/DoyleJ11/tetris-server/internal/display"
	"github.com/DoyleJ11/tetris-server/internal/engine"
	"github.com/DoyleJ11/tetris-server/internal/hub"
	"github.com/DoyleJ11/tetris-server/internal/room"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	maxCodeAttempts = 16
	codeLength      = 6
	// no 0/O or 1/I
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateCode returns a random game code drawn from codeAlphabet.
func GenerateCode() (string, error) {
	size := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(codeLength)
	for range codeLength {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

type gameView struct {
	Code    string        `json:"code"`
	Version int           `json:"version"`
	Clients int           `json:"clients"`
	State   engine.State  `json:"state"`
	Frame   display.Frame `json:"frame"`
}

type keyRequest struct {
	Key string `json:"key"`
}

func CreateGame(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for attempt := 0; code == ""; attempt++ {
			if attempt == maxCodeAttempts {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			c, err := GenerateCode()
			if err != nil {
				log.Error("generate code", zap.Error(err))
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			if h.Get(r.Context(), c) == nil {
				code = c
				break
			}
			log.Debug("collision on code, regenerating", zap.String("code", c))
		}

		if h.Ensure(r.Context(), code) == nil {
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func ListGames(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes := h.List(r.Context())
		if codes == nil {
			codes = []string{}
		}
		writeJSON(w, http.StatusOK, struct {
			Codes []string `json:"codes"`
		}{Codes: codes})
	}
}

func GetGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		rm := h.Get(r.Context(), code)
		if rm == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		v, ok := rm.View(r.Context())
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, gameView{
			Code:    code,
			Version: v.Version,
			Clients: v.NumClients,
			State:   v.State,
			Frame:   v.Frame,
		})
	}
}

func DeleteGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.Remove(r.Context(), chi.URLParam(r, "code")) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func PressKey(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		key, ok := engine.ParseKey(req.Key)
		if !ok {
			http.Error(w, "unknown key", http.StatusBadRequest)
			return
		}
		rm := h.Get(r.Context(), chi.URLParam(r, "code"))
		if rm == nil || !rm.Send(r.Context(), room.Press{Key: key}) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
