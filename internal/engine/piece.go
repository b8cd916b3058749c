package engine

import "iter"

type Kind int

const (
	KindI Kind = iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

// NumKinds is the size of the piece catalog.
const NumKinds = 7

var kindNames = [NumKinds]string{"I", "O", "T", "S", "Z", "J", "L"}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return "?"
	}
	return kindNames[k]
}

// Color is the identity a locked or drawn cell carries. Empty is the zero value.
type Color uint8

const (
	Empty Color = iota
	Cyan
	Yellow
	Purple
	Green
	Red
	Blue
	Orange
)

var colorNames = [...]string{"empty", "cyan", "yellow", "purple", "green", "red", "blue", "orange"}

func (c Color) String() string {
	if int(c) >= len(colorNames) {
		return "?"
	}
	return colorNames[c]
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Spawn offset for every new piece.
var SpawnPos = Point{X: 3, Y: 0}

var catalog = [NumKinds][]string{
	KindI: {"####"},
	KindO: {"##", "##"},
	KindT: {"###", ".#."},
	KindS: {".##", "##."},
	KindZ: {"##.", ".##"},
	KindJ: {"#..", "###"},
	KindL: {"..#", "###"},
}

var kindColors = [NumKinds]Color{
	KindI: Cyan,
	KindO: Yellow,
	KindT: Purple,
	KindS: Green,
	KindZ: Red,
	KindJ: Blue,
	KindL: Orange,
}

type Piece struct {
	Kind  Kind
	Color Color
	Shape [][]bool // row-major, Shape[y][x]
	Pos   Point
}

// NewPiece builds the piece for typeIndex, wrapped into the catalog range.
func NewPiece(typeIndex int) *Piece {
	k := Kind(((typeIndex % NumKinds) + NumKinds) % NumKinds)
	rows := catalog[k]
	shape := make([][]bool, len(rows))
	for y, row := range rows {
		shape[y] = make([]bool, len(row))
		for x, ch := range row {
			shape[y][x] = ch == '#'
		}
	}
	return &Piece{
		Kind:  k,
		Color: kindColors[k],
		Shape: shape,
		Pos:   SpawnPos,
	}
}

// Cells yields the occupied offsets of the shape in row-major order.
func (p *Piece) Cells() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y, row := range p.Shape {
			for x, filled := range row {
				if !filled {
					continue
				}
				if !yield(Point{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// Translate moves the piece without any bounds checking.
func (p *Piece) Translate(dx, dy int) {
	p.Pos.X += dx
	p.Pos.Y += dy
}

// Rotate turns the shape 90 degrees clockwise. The result has the row and
// column counts swapped.
func (p *Piece) Rotate() {
	rows := len(p.Shape)
	cols := len(p.Shape[0])
	out := make([][]bool, cols)
	for x := range out {
		out[x] = make([]bool, rows)
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out[x][rows-1-y] = p.Shape[y][x]
		}
	}
	p.Shape = out
}

// RotateBack undoes one Rotate by rotating three more times.
func (p *Piece) RotateBack() {
	for i := 0; i < 3; i++ {
		p.Rotate()
	}
}

func (p *Piece) Clone() *Piece {
	shape := make([][]bool, len(p.Shape))
	for y, row := range p.Shape {
		shape[y] = append([]bool(nil), row...)
	}
	return &Piece{Kind: p.Kind, Color: p.Color, Shape: shape, Pos: p.Pos}
}
