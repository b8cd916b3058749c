// Package hub keeps the set of live rooms, keyed by their join code.
package hub

import (
	"context"
	"slices"

	"github.com/DoyleJ11/tetris-server/internal/room"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type EnsureRoom struct {
	Code  string
	Reply chan *room.Room
}

// RemoveRoom forgets the room and stops it. Reply, when set, reports
// whether the code was known.
type RemoveRoom struct {
	Code  string
	Reply chan bool
}

type ListRooms struct {
	Reply chan []string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	cfg    room.Config
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub starts the registry loop. Every room it creates uses cfg.
func NewHub(parent context.Context, cfg room.Config, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		cfg:    cfg,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			// rooms share h.ctx and stop on their own
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom, EnsureRoom:
				code, reply := roomRequest(msg)
				if rm := h.rooms[code]; rm != nil {
					reply <- rm
					break
				}
				rm := room.New(h.ctx, code, h.cfg, h.log.Named("room"))
				h.rooms[code] = rm
				h.log.Info("room created", zap.String("room", code), zap.Int("rooms", len(h.rooms)))
				reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case RemoveRoom:
				rm, ok := h.rooms[msg.Code]
				if ok {
					delete(h.rooms, msg.Code)
					rm.Send(h.ctx, room.Shutdown{})
					h.log.Info("room removed", zap.String("room", msg.Code), zap.Int("rooms", len(h.rooms)))
				}
				if msg.Reply != nil {
					msg.Reply <- ok
				}

			case ListRooms:
				codes := make([]string, 0, len(h.rooms))
				for code := range h.rooms {
					codes = append(codes, code)
				}
				slices.Sort(codes)
				msg.Reply <- codes

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Send(h.ctx, room.Shutdown{})
				}
				clear(h.rooms)
				h.cancel()
				return
			}
		}
	}
}

func roomRequest(m HubMsg) (string, chan *room.Room) {
	switch msg := m.(type) {
	case CreateRoom:
		return msg.Code, msg.Reply
	case EnsureRoom:
		return msg.Code, msg.Reply
	}
	return "", nil
}

// Get looks up a room by code; nil means unknown or the hub is gone.
func (h *Hub) Get(ctx context.Context, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	if !h.send(ctx, GetRoom{Code: code, Reply: reply}) {
		return nil
	}
	return h.await(ctx, reply)
}

func (h *Hub) Ensure(ctx context.Context, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	if !h.send(ctx, EnsureRoom{Code: code, Reply: reply}) {
		return nil
	}
	return h.await(ctx, reply)
}

func (h *Hub) Remove(ctx context.Context, code string) bool {
	reply := make(chan bool, 1)
	if !h.send(ctx, RemoveRoom{Code: code, Reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) List(ctx context.Context) []string {
	reply := make(chan []string, 1)
	if !h.send(ctx, ListRooms{Reply: reply}) {
		return nil
	}
	select {
	case codes := <-reply:
		return codes
	case <-ctx.Done():
		return nil
	case <-h.ctx.Done():
		return nil
	}
}

func (h *Hub) send(ctx context.Context, msg HubMsg) bool {
	select {
	case h.inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) await(ctx context.Context, reply chan *room.Room) *room.Room {
	select {
	case rm := <-reply:
		return rm
	case <-ctx.Done():
		return nil
	case <-h.ctx.Done():
		return nil
	}
}
