package engine

import (
	"testing"

	"github.com/mbergstrom/zugzwang/internal/board"
)

func TestGameForEachLegalChildNodeCountsStartingMoves(t *testing.T) {
	g := NewGame()
	explorer := g.Explore()

	count := 0
	ending := explorer.ForEachLegalChildNode(MoveOrderMvvLva, func(m board.Move) {
		count++
	})

	if ending != nil {
		t.Fatalf("starting position reported as ended: %v", *ending)
	}
	if count != 20 {
		t.Errorf("starting position legal move count = %d, want 20", count)
	}
	if g.Zobrist() != NewGame().Zobrist() {
		t.Error("game hash not restored after exploration")
	}
}

func TestGameHistoryEmptyInitially(t *testing.T) {
	g := NewGame()
	if !g.IsHistoryEmpty() {
		t.Fatal("fresh game should have empty history")
	}
}

func TestGameCheckEndingFindsStalemate(t *testing.T) {
	// King and queen vs lone king, black to move and stalemated.
	g, err := NewGameFromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	move, ending := g.Explore().CheckEnding()
	if ending == nil || *ending != Stalemate {
		t.Fatalf("CheckEnding() = (%v, %v), want (NoMove, Stalemate)", move, ending)
	}
}

func TestGameCloneIsIndependent(t *testing.T) {
	g := NewGame()

	var firstLegal board.Move
	g.Explore().ForEachLegalChildNode(MoveOrderNone, func(m board.Move) {
		if firstLegal == board.NoMove {
			firstLegal = m
		}
	})

	clone := g.Clone()
	if !clone.TryMakeMove(firstLegal) {
		t.Fatal("expected clone to accept a legal starting move")
	}
	if clone.Zobrist() == g.Zobrist() {
		t.Error("clone's hash should differ from the original after a move")
	}
	if g.Zobrist() != NewGame().Zobrist() {
		t.Error("making a move on the clone mutated the original game")
	}
}
