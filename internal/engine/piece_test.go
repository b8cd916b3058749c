package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPiece_EveryKindHasFourStableCells(t *testing.T) {
	for i := 0; i < NumKinds; i++ {
		p := NewPiece(i)
		t.Run(p.Kind.String(), func(t *testing.T) {
			first := slices.Collect(p.Cells())
			second := slices.Collect(p.Cells())

			require.Len(t, first, 4)
			assert.Equal(t, first, second, "cells should not change between calls")
			assert.Equal(t, SpawnPos, p.Pos)
			assert.NotEqual(t, Empty, p.Color)
		})
	}
}

func TestNewPiece_WrapsTypeIndex(t *testing.T) {
	cases := []struct {
		name  string
		index int
		want  Kind
	}{
		{name: "in range", index: 2, want: KindT},
		{name: "one past the end", index: 7, want: KindI},
		{name: "large", index: 7*3 + 6, want: KindL},
		{name: "negative", index: -1, want: KindL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPiece(tc.index)
			assert.Equal(t, tc.want, p.Kind)
			assert.Equal(t, kindColors[tc.want], p.Color)
		})
	}
}

func TestCells_RowMajorOrder(t *testing.T) {
	p := NewPiece(int(KindT))
	got := slices.Collect(p.Cells())
	want := []Point{{0, 0}, {1, 0}, {2, 0}, {1, 1}}
	assert.Equal(t, want, got)
}

func TestCells_StopsWhenConsumerStops(t *testing.T) {
	p := NewPiece(int(KindI))
	n := 0
	for range p.Cells() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestRotate_Clockwise(t *testing.T) {
	p := NewPiece(int(KindT))
	p.Rotate()

	want := [][]bool{
		{false, true},
		{true, true},
		{false, true},
	}
	assert.Equal(t, want, p.Shape)
}

func TestRotate_FourTimesIsIdentity(t *testing.T) {
	for i := 0; i < NumKinds; i++ {
		p := NewPiece(i)
		t.Run(p.Kind.String(), func(t *testing.T) {
			orig := p.Clone()
			for n := 0; n < 4; n++ {
				p.Rotate()
			}
			assert.Equal(t, orig.Shape, p.Shape)
		})
	}
}

func TestRotateBack_UndoesRotate(t *testing.T) {
	for i := 0; i < NumKinds; i++ {
		p := NewPiece(i)
		t.Run(p.Kind.String(), func(t *testing.T) {
			orig := p.Clone()
			p.Rotate()
			p.RotateBack()
			require.Equal(t, len(orig.Shape), len(p.Shape), "row count")
			assert.Equal(t, orig.Shape, p.Shape)
		})
	}
}

func TestTranslate_NoBoundsCheck(t *testing.T) {
	p := NewPiece(0)
	p.Translate(-10, 40)
	assert.Equal(t, Point{X: -7, Y: 40}, p.Pos)
}

func TestClone_IsDeep(t *testing.T) {
	p := NewPiece(int(KindS))
	c := p.Clone()
	c.Shape[0][0] = true
	c.Translate(1, 1)

	assert.False(t, p.Shape[0][0])
	assert.Equal(t, SpawnPos, p.Pos)
}
