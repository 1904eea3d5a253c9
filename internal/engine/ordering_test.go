package engine

import (
	"testing"

	"github.com/mbergstrom/zugzwang/internal/board"
)

func TestForEachLegalChildNodeOrdersCapturesFirst(t *testing.T) {
	// White to move after 1.e4 d5: exd5 is a legal capture alongside
	// many quiet moves.
	g, err := NewGameFromFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var moves []board.Move
	g.Explore().ForEachLegalChildNode(MoveOrderMvvLva, func(m board.Move) {
		moves = append(moves, m)
	})

	if len(moves) == 0 {
		t.Fatal("expected legal moves")
	}

	firstQuietSeen := -1
	for i, m := range moves {
		if !m.IsCapture() && firstQuietSeen == -1 {
			firstQuietSeen = i
		}
		if m.IsCapture() && firstQuietSeen != -1 {
			t.Fatalf("capture at index %d ordered after quiet move at index %d", i, firstQuietSeen)
		}
	}
}
