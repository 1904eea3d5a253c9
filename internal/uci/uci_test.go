package uci

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/mbergstrom/zugzwang/internal/board"
	"github.com/mbergstrom/zugzwang/internal/engine"
)

func newTestUCI(t *testing.T, input string) (*UCI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	u := New(1, 1, logr.Discard())
	u.in = bufio.NewScanner(strings.NewReader(input))
	u.out = &out
	t.Cleanup(func() { u.server.Quit() })
	return u, &out
}

func TestUCIHandshake(t *testing.T) {
	u, out := newTestUCI(t, "uci\nisready\nquit\n")
	u.Run()

	got := out.String()
	if !strings.Contains(got, "id name Zugzwang") {
		t.Errorf("output missing id line: %q", got)
	}
	if !strings.Contains(got, "uciok") {
		t.Errorf("output missing uciok: %q", got)
	}
	if !strings.Contains(got, "readyok") {
		t.Errorf("output missing readyok: %q", got)
	}
}

func TestUCIUnknownCommandIgnored(t *testing.T) {
	u, _ := newTestUCI(t, "nonsense\nisready\nquit\n")
	u.Run()
}

// TestUCIDefersPositionWhileSearching confirms a position command is
// queued rather than applied while a search is in flight, and replayed
// once it reports its outcome.
func TestUCIDefersPositionWhileSearching(t *testing.T) {
	u, _ := newTestUCI(t, "")

	u.mu.Lock()
	u.searching = true
	u.mu.Unlock()

	u.dispatchOrDefer("position", []string{"fen", "4k3/8/8/8/8/8/8/4K3", "b", "-", "-", "0", "1"})

	u.mu.Lock()
	queued := len(u.queue)
	u.mu.Unlock()
	if queued != 1 {
		t.Fatalf("expected 1 queued command while searching, got %d", queued)
	}
	if u.game.Position().SideToMove != board.White {
		t.Error("position command applied immediately despite a search in progress")
	}

	u.mu.Lock()
	u.searching = false
	u.mu.Unlock()
	u.drainQueue()

	if u.game.Position().SideToMove != board.Black {
		t.Error("queued position command was never applied after the search finished")
	}
}

// TestUCIGoProducesOutcome drives the SearchServer directly (bypassing
// Run's line-at-a-time stdin loop) to confirm a "go depth" request
// reports a bestmove promptly.
func TestUCIGoProducesOutcome(t *testing.T) {
	u, _ := newTestUCI(t, "")

	u.server.Send(engine.GoCmd(u.game.Clone(), engine.GoParams{Depth: 2}))

	select {
	case outcome := <-u.server.Outcomes():
		if outcome.BestMove == board.NoMove {
			t.Log("search produced the null move (no legal moves) unexpectedly for the starting position")
			t.Fail()
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for search outcome")
	}
}
