package engine

// Session owns the board, the active and next pieces and the counters.
// It is not safe for concurrent use; hosts deliver events one at a time.
type Session struct {
	grid    [Rows][Columns]Color
	current *Piece
	next    *Piece

	score    int
	lines    int
	gameOver bool
	phase    Phase

	tickCounter   int
	moveThreshold int

	display Display
	rng     RandomSource
	events  []Event
}

// NewSession starts a game: the first piece is spawned before it returns.
func NewSession(display Display, rng RandomSource, moveThreshold int) *Session {
	if display == nil {
		display = NopDisplay{}
	}
	if moveThreshold < 1 {
		moveThreshold = 1
	}
	s := &Session{
		display:       display,
		rng:           rng,
		moveThreshold: moveThreshold,
	}
	s.spawn()
	s.events = nil
	return s
}

func (s *Session) OnTick() []Event {
	if s.gameOver {
		return nil
	}
	s.tickCounter++
	if s.tickCounter >= s.moveThreshold {
		s.tickCounter = 0
		s.Move(0, 1)
	}
	return s.drain()
}

func (s *Session) OnKeyPressed(key Key) []Event {
	if key == KeyRestart {
		s.Restart()
		return s.drain()
	}
	if s.gameOver {
		return nil
	}
	switch key {
	case KeyLeft:
		s.Move(-1, 0)
	case KeyRight:
		s.Move(1, 0)
	case KeyDown:
		s.Move(0, 1)
	case KeyUp:
		s.Rotate()
	}
	return s.drain()
}

// Move shifts the active piece when the target is free. A blocked downward
// move locks the piece; other blocked moves do nothing.
func (s *Session) Move(dx, dy int) bool {
	if s.gameOver || s.current == nil {
		return false
	}
	if s.IsColliding(dx, dy) {
		if dy > 0 {
			s.lock()
		}
		return false
	}
	s.drawPiece(Empty)
	s.current.Translate(dx, dy)
	s.drawPiece(s.current.Color)
	s.emit(Event{Type: EvtPieceMoved, Kind: s.current.Kind, Pos: s.current.Pos})
	return true
}

// Rotate turns the active piece clockwise, reverting if it would collide.
func (s *Session) Rotate() bool {
	if s.gameOver || s.current == nil {
		return false
	}
	s.drawPiece(Empty)
	s.current.Rotate()
	if s.IsColliding(0, 0) {
		s.current.RotateBack()
		s.drawPiece(s.current.Color)
		return false
	}
	s.drawPiece(s.current.Color)
	s.emit(Event{Type: EvtPieceRotated, Kind: s.current.Kind, Pos: s.current.Pos})
	return true
}

// IsColliding reports whether the active piece offset by (dx, dy) would
// leave the board or overlap a locked cell.
func (s *Session) IsColliding(dx, dy int) bool {
	if s.current == nil {
		return false
	}
	return s.collides(s.current, dx, dy)
}

func (s *Session) collides(p *Piece, dx, dy int) bool {
	for c := range p.Cells() {
		x := p.Pos.X + c.X + dx
		y := p.Pos.Y + c.Y + dy
		if x < 0 || x >= Columns || y < 0 || y >= Rows {
			return true
		}
		if s.grid[y][x] != Empty {
			return true
		}
	}
	return false
}

// Restart wipes the board and counters and spawns a fresh piece. It is
// accepted in every phase, including game over.
func (s *Session) Restart() {
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			s.grid[y][x] = Empty
			s.display.SetMainCell(x, y, Empty)
		}
	}
	s.clearPreview()
	s.score = 0
	s.lines = 0
	s.current = nil
	s.next = nil
	s.gameOver = false
	s.tickCounter = 0
	s.emit(Event{Type: EvtRestarted})
	s.spawn()
}

func (s *Session) spawn() {
	s.phase = PhaseSpawning
	if s.next == nil {
		s.next = s.newPiece()
	}
	s.current = s.next
	s.next = s.newPiece()

	if s.IsColliding(0, 0) {
		s.gameOver = true
		s.phase = PhaseGameOver
		s.emit(Event{Type: EvtGameOver, Kind: s.current.Kind, Pos: s.current.Pos})
		return
	}

	s.drawPiece(s.current.Color)
	s.clearPreview()
	for c := range s.next.Cells() {
		s.display.SetPreviewCell(c.X, c.Y, s.next.Color)
	}
	s.phase = PhaseFalling
	s.emit(Event{Type: EvtPieceSpawned, Kind: s.current.Kind, Pos: s.current.Pos})
}

func (s *Session) lock() {
	s.phase = PhaseLocking
	p := s.current
	for c := range p.Cells() {
		s.grid[p.Pos.Y+c.Y][p.Pos.X+c.X] = p.Color
	}
	s.emit(Event{Type: EvtPieceLocked, Kind: p.Kind, Pos: p.Pos})

	s.clearLines()
	s.spawn()
}

// clearLines removes full rows top to bottom and returns how many went.
func (s *Session) clearLines() int {
	s.phase = PhaseLineClearing
	cleared := 0
	for y := 0; y < Rows; y++ {
		if !s.rowFull(y) {
			continue
		}
		cleared++
		for row := y; row > 0; row-- {
			s.grid[row] = s.grid[row-1]
		}
		s.grid[0] = [Columns]Color{}
	}

	if cleared > 0 {
		points := ScoreFor(cleared)
		s.score += points
		s.lines += cleared
		s.emit(Event{Type: EvtLinesCleared, Lines: cleared, Points: points})
	}
	s.redrawGrid()
	return cleared
}

func (s *Session) rowFull(y int) bool {
	for x := 0; x < Columns; x++ {
		if s.grid[y][x] == Empty {
			return false
		}
	}
	return true
}

func (s *Session) newPiece() *Piece {
	idx := 0
	if s.rng != nil {
		idx = s.rng.Intn(NumKinds)
	}
	return NewPiece(idx)
}

func (s *Session) drawPiece(c Color) {
	p := s.current
	for cell := range p.Cells() {
		s.display.SetMainCell(p.Pos.X+cell.X, p.Pos.Y+cell.Y, c)
	}
}

func (s *Session) clearPreview() {
	for y := 0; y < PreviewSize; y++ {
		for x := 0; x < PreviewSize; x++ {
			s.display.SetPreviewCell(x, y, Empty)
		}
	}
}

func (s *Session) redrawGrid() {
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			s.display.SetMainCell(x, y, s.grid[y][x])
		}
	}
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *Session) drain() []Event {
	events := s.events
	s.events = nil
	return events
}

func (s *Session) State() State {
	st := State{
		Phase:    s.phase,
		Score:    s.score,
		Lines:    s.lines,
		Level:    LevelFor(s.lines),
		GameOver: s.gameOver,
	}
	if s.current != nil {
		st.Current = s.current.Kind
		st.Pos = s.current.Pos
	}
	if s.next != nil {
		st.Next = s.next.Kind
	}
	return st
}

func (s *Session) Score() int     { return s.score }
func (s *Session) Lines() int     { return s.lines }
func (s *Session) GameOver() bool { return s.gameOver }
func (s *Session) Phase() Phase   { return s.phase }

// Cell returns the locked color at (x, y); out-of-range reads are Empty.
func (s *Session) Cell(x, y int) Color {
	if x < 0 || x >= Columns || y < 0 || y >= Rows {
		return Empty
	}
	return s.grid[y][x]
}

// Current returns a copy of the active piece, or nil.
func (s *Session) Current() *Piece {
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// Next returns a copy of the preview piece, or nil.
func (s *Session) Next() *Piece {
	if s.next == nil {
		return nil
	}
	return s.next.Clone()
}
