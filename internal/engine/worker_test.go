package engine

import (
	"testing"
	"time"
)

func newTestScheduler(t *testing.T) *ParallelSearch {
	t.Helper()
	s := NewParallelSearch(2, 1)
	t.Cleanup(func() { s.Quit() })
	return s
}

func TestParallelSearchRecognizesCheckmate(t *testing.T) {
	s := newTestScheduler(t)

	// Back-rank mate: black to move, already checkmated.
	g, err := NewGameFromFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	s.PrepareSearch(SearchRequest{Game: g, Depth: 3, Deadline: time.Now().Add(5 * time.Second)})
	s.Go()
	results := s.Stop()

	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Score.MateIn() != 0 || !results[0].Score.IsMate() {
		t.Errorf("expected Mated(0), got %v", results[0].Score)
	}
}

func TestParallelSearchRespectsNodeLimit(t *testing.T) {
	s := newTestScheduler(t)
	g := NewGame()

	s.PrepareSearch(SearchRequest{Game: g, Depth: 6, NodesMax: 50})
	s.Go()
	results := s.Stop()

	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if !results[0].Unfinished {
		t.Error("expected a node-limited search to report Unfinished")
	}
}

func TestParallelSearchClearTT(t *testing.T) {
	s := newTestScheduler(t)
	s.PrepareSearch(SearchRequest{Game: NewGame(), Depth: 1})
	s.Go()
	s.Stop()

	s.ClearTT() // must not panic while idle
}
