// Package room hosts one running game. A room is the single goroutine that
// touches its Session: ticks from its ticker and key presses from clients are
// applied one at a time, and every visible change is broadcast as a versioned
// snapshot.
package room

import (
	"context"
	"math/rand"
	"time"

	"github.com/DoyleJ11/tetris-server/internal/display"
	"github.com/DoyleJ11/tetris-server/internal/engine"
	"go.uber.org/zap"
)

type Msg interface{ isRoomMsg() }

type Press struct {
	Key engine.Key
}

func (Press) isRoomMsg() {}

// Tick advances the game by hand; used when the room has no ticker.
type Tick struct{}

func (Tick) isRoomMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
	Frame   display.Frame
	Changes []display.Cell // nil on the snapshot sent at join
	Events  []engine.Event
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Frame      display.Frame
}

type Config struct {
	TickInterval  time.Duration // 0 disables the ticker
	MoveThreshold int
	Seed          int64 // 0 picks a time based seed
}

// Game is the part of engine.Session a room drives.
type Game interface {
	engine.Controller
	State() engine.State
}

type Room struct {
	code    string
	cfg     Config
	inbox   chan Msg
	game    Game
	screen  *display.Buffer
	version int
	clients map[string]chan Snapshot
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(parent context.Context, code string, cfg Config, log *zap.Logger) *Room {
	if log == nil {
		log = zap.NewNop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctx, cancel := context.WithCancel(parent)

	screen := display.NewBuffer()
	game := engine.NewSession(screen, rand.New(rand.NewSource(seed)), cfg.MoveThreshold)
	screen.Flush() // the join snapshot carries the full frame

	r := &Room{
		code:    code,
		cfg:     cfg,
		inbox:   make(chan Msg, 64),
		game:    game,
		screen:  screen,
		clients: make(map[string]chan Snapshot),
		log:     log.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	defer close(r.done)

	var tick <-chan time.Time
	if r.cfg.TickInterval > 0 {
		ticker := time.NewTicker(r.cfg.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.log.Info("room started",
		zap.Duration("tick_interval", r.cfg.TickInterval),
		zap.Int("move_threshold", r.cfg.MoveThreshold))

	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-tick:
			r.apply(r.game.OnTick())

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox
				r.send(msg.ClientID, msg.Outbox, r.snapshot(nil, nil))
				r.log.Debug("client joined", zap.String("client", msg.ClientID), zap.Int("clients", len(r.clients)))

			case Leave:
				// a dropped client's outbox is already closed and gone from the map
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}
				r.log.Debug("client left", zap.String("client", msg.ClientID), zap.Int("clients", len(r.clients)))

			case Press:
				r.apply(r.game.OnKeyPressed(msg.Key))

			case Tick:
				r.apply(r.game.OnTick())

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.game.State(),
					Frame:      r.screen.Frame(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

// apply publishes the outcome of one game call. Calls that neither emitted
// events nor changed the screen are not broadcast.
func (r *Room) apply(events []engine.Event) {
	if len(events) == 0 && !r.screen.Pending() {
		return
	}
	for _, e := range events {
		switch e.Type {
		case engine.EvtGameOver:
			st := r.game.State()
			r.log.Info("game over", zap.Int("score", st.Score), zap.Int("lines", st.Lines))
		case engine.EvtLinesCleared:
			r.log.Debug("lines cleared", zap.Int("lines", e.Lines), zap.Int("points", e.Points))
		default:
			r.log.Debug("event", zap.String("type", string(e.Type)), zap.Stringer("kind", e.Kind))
		}
	}

	r.version++
	changes := r.screen.Flush()
	if changes == nil {
		changes = []display.Cell{}
	}
	r.broadcast(r.snapshot(changes, events))
}

func (r *Room) snapshot(changes []display.Cell, events []engine.Event) Snapshot {
	return Snapshot{
		Version: r.version,
		State:   r.game.State(),
		Frame:   r.screen.Frame(),
		Changes: changes,
		Events:  events,
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
	}
	r.cancel()
	r.log.Info("room stopped", zap.Int("version", r.version))
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		r.send(id, ch, snap)
	}
}

func (r *Room) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		//ok
	default:
		// Client is slow/full - drop them.
		close(ch)
		delete(r.clients, id)
		r.log.Warn("dropped slow client", zap.String("client", id))
	}
}

// Inbox exposes the room's mailbox for tests and transports.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Send delivers msg unless ctx ends or the room has stopped first.
func (r *Room) Send(ctx context.Context, msg Msg) bool {
	select {
	case r.inbox <- msg:
		return true
	case <-r.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// View asks the loop for its current state.
func (r *Room) View(ctx context.Context) (View, bool) {
	reply := make(chan View, 1)
	if !r.Send(ctx, GetState{Reply: reply}) {
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-r.done:
		return View{}, false
	case <-ctx.Done():
		return View{}, false
	}
}

func (r *Room) Code() string { return r.code }

// Done is closed once the loop has exited.
func (r *Room) Done() <-chan struct{} { return r.done }
