// Package display is the host-side drawing surface for a Session. It keeps
// the latest frame and the cells changed since the last flush so a transport
// can send either.
package display

import "github.com/DoyleJ11/tetris-server/internal/engine"

type Area string

const (
	AreaMain    Area = "main"
	AreaPreview Area = "preview"
)

type Cell struct {
	Area  Area         `json:"area"`
	X     int          `json:"x"`
	Y     int          `json:"y"`
	Color engine.Color `json:"color"`
}

type Frame struct {
	Main    [engine.Rows][engine.Columns]engine.Color            `json:"main"`
	Preview [engine.PreviewSize][engine.PreviewSize]engine.Color `json:"preview"`
}

type cellKey struct {
	area Area
	x, y int
}

// Buffer implements engine.Display.
type Buffer struct {
	frame   Frame
	changed []Cell
	index   map[cellKey]int // position in changed
	flushed Frame           // frame as of the last Flush
}

func NewBuffer() *Buffer {
	return &Buffer{index: make(map[cellKey]int)}
}

func (b *Buffer) SetMainCell(x, y int, c engine.Color) {
	if x < 0 || x >= engine.Columns || y < 0 || y >= engine.Rows {
		return
	}
	b.frame.Main[y][x] = c
	b.record(Cell{Area: AreaMain, X: x, Y: y, Color: c}, b.flushed.Main[y][x])
}

func (b *Buffer) SetPreviewCell(x, y int, c engine.Color) {
	if x < 0 || x >= engine.PreviewSize || y < 0 || y >= engine.PreviewSize {
		return
	}
	b.frame.Preview[y][x] = c
	b.record(Cell{Area: AreaPreview, X: x, Y: y, Color: c}, b.flushed.Preview[y][x])
}

// record keeps the last write per cell, dropping cells that ended up back
// at their flushed color.
func (b *Buffer) record(cell Cell, was engine.Color) {
	key := cellKey{area: cell.Area, x: cell.X, y: cell.Y}
	i, seen := b.index[key]
	switch {
	case seen && cell.Color == was:
		b.changed = append(b.changed[:i], b.changed[i+1:]...)
		delete(b.index, key)
		for k, j := range b.index {
			if j > i {
				b.index[k] = j - 1
			}
		}
	case seen:
		b.changed[i] = cell
	case cell.Color != was:
		b.index[key] = len(b.changed)
		b.changed = append(b.changed, cell)
	}
}

func (b *Buffer) Frame() Frame { return b.frame }

// Pending reports whether any cell differs from the last flush.
func (b *Buffer) Pending() bool { return len(b.changed) > 0 }

// Flush returns the cells changed since the previous Flush, in first-write
// order, and starts a new change set.
func (b *Buffer) Flush() []Cell {
	out := b.changed
	b.changed = nil
	clear(b.index)
	b.flushed = b.frame
	return out
}
