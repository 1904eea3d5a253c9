package engine

import (
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/mbergstrom/zugzwang/internal/board"
)

// TestSearchServerPrefersWinningRootMove guards against a root-score
// sign inversion: the server must report the move that is best for the
// side to move, not the one that is best for the opponent. Rxa2 wins a
// whole rook for free here; every other legal move leaves it hanging.
func TestSearchServerPrefersWinningRootMove(t *testing.T) {
	s := NewSearchServer(1, 1, logr.Discard())
	t.Cleanup(s.Quit)

	g, err := NewGameFromFEN("4k3/8/8/8/8/8/r7/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	want := mustParseMove(t, "a1a2", g.Position())

	s.Send(GoCmd(g, GoParams{Depth: 2}))

	select {
	case outcome := <-s.Outcomes():
		if outcome.BestMove != want {
			t.Errorf("bestmove = %s, want %s (the free rook capture)", outcome.BestMove, want)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for search outcome")
	}
}

func mustParseMove(t *testing.T, s string, pos *board.Position) board.Move {
	t.Helper()
	m, err := board.ParseMove(s, pos)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}
