package engine

const (
	Columns     = 10
	Rows        = 20
	PreviewSize = 4
)

// DefaultMoveThreshold is how many ticks pass between gravity steps.
const DefaultMoveThreshold = 10

type Phase string

const (
	PhaseSpawning     Phase = "spawning"
	PhaseFalling      Phase = "falling"
	PhaseLocking      Phase = "locking"
	PhaseLineClearing Phase = "line_clearing"
	PhaseGameOver     Phase = "game_over"
)

type Key string

const (
	KeyNone    Key = ""
	KeyLeft    Key = "left"
	KeyRight   Key = "right"
	KeyDown    Key = "down"
	KeyUp      Key = "up"
	KeyRestart Key = "restart"
)

type EventType string

const (
	EvtPieceSpawned EventType = "PieceSpawned"
	EvtPieceMoved   EventType = "PieceMoved"
	EvtPieceRotated EventType = "PieceRotated"
	EvtPieceLocked  EventType = "PieceLocked"
	EvtLinesCleared EventType = "LinesCleared"
	EvtGameOver     EventType = "GameOver"
	EvtRestarted    EventType = "Restarted"
)

/*
	tick/down  -> PieceMoved
	           -> PieceLocked -> LinesCleared (only if rows cleared) -> PieceSpawned | GameOver
	left/right -> PieceMoved
	up         -> PieceRotated
	restart    -> Restarted -> PieceSpawned
*/

type Event struct {
	Type   EventType
	Kind   Kind
	Pos    Point
	Lines  int
	Points int
}

// Display is the surface a Session draws into. x is the column, y the row.
type Display interface {
	SetMainCell(x, y int, c Color)
	SetPreviewCell(x, y int, c Color)
}

// RandomSource picks piece types. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Controller is what a host drives: one periodic tick and discrete key presses,
// never concurrently.
type Controller interface {
	OnTick() []Event
	OnKeyPressed(key Key) []Event
}

// State is the read model a host shows next to the board.
type State struct {
	Phase    Phase `json:"phase"`
	Score    int   `json:"score"`
	Lines    int   `json:"lines"`
	Level    int   `json:"level"`
	GameOver bool  `json:"game_over"`
	Current  Kind  `json:"current"`
	Next     Kind  `json:"next"`
	Pos      Point `json:"pos"`
}
