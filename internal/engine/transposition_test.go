package engine

import (
	"testing"

	"github.com/mbergstrom/zugzwang/internal/board"
)

func TestTranspositionTableInsertGet(t *testing.T) {
	tt := NewTranspositionTable(1)

	entry := Transposition{BestMove: board.NewMove(board.E2, board.E4), Score: Cp(37), Depth: 6}
	tt.Insert(0xdeadbeef, entry)

	got, ok := tt.Get(0xdeadbeef)
	if !ok {
		t.Fatal("expected entry to be present")
	}
	if got.BestMove != entry.BestMove || got.Depth != entry.Depth || got.Score.CpValue() != 37 {
		t.Errorf("Get() = %+v, want %+v", got, entry)
	}

	if _, ok := tt.Get(0x1); ok {
		t.Error("expected miss for unrelated hash")
	}
}

func TestTranspositionTableRoundTripsMateScores(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Insert(7, Transposition{BestMove: board.NoMove, Score: Mating(3), Depth: 2})

	got, ok := tt.Get(7)
	if !ok || !got.Score.IsMate() || got.Score.MateIn() != 3 {
		t.Errorf("Get() = %+v, ok=%v, want Mating(3)", got, ok)
	}

	tt.Insert(7, Transposition{BestMove: board.NoMove, Score: Mated(2), Depth: 1})
	got, ok = tt.Get(7)
	if !ok || !got.Score.IsMate() || got.Score.MateIn() != -2 {
		t.Errorf("Get() = %+v, ok=%v, want Mated(2)", got, ok)
	}
}

func TestTranspositionTableClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Insert(42, Transposition{Score: Cp(1), Depth: 1})
	tt.Clear()

	if _, ok := tt.Get(42); ok {
		t.Error("expected table to be empty after Clear")
	}
}
