package board

import "testing"

// perftStats is the divide-style breakdown used by spec scenarios that
// check captures/en-passant/castles/promotions/checks/mates, not just
// the raw leaf count.
type perftStats struct {
	Nodes, Captures, EnPassant, Castles, Promotions, Checks, Mates int64
}

func perftDivide(p *Position, depth int, stats *perftStats) {
	if depth == 0 {
		stats.Nodes++
		return
	}

	moves := p.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if depth == 1 {
			stats.Nodes++
			if m.IsCapture() {
				stats.Captures++
			}
			if m.IsEnPassant() {
				stats.EnPassant++
			}
			if m.IsCastling() {
				stats.Castles++
			}
			if m.IsPromotion() {
				stats.Promotions++
			}
			undo := p.MakeMove(m)
			if p.InCheck() {
				stats.Checks++
				if !p.HasLegalMoves() {
					stats.Mates++
				}
			}
			p.UnmakeMove(m, undo)
			continue
		}
		undo := p.MakeMove(m)
		perftDivide(p, depth-1, stats)
		p.UnmakeMove(m, undo)
	}
}

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
		// Depth 5 takes longer, enable for thorough testing:
		// {5, 4865609},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases.
// FEN: r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -
func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
		// {4, 4085603}, // Takes ~1s, enable for thorough testing
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftPosition3 tests en passant edge cases.
// FEN: 8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -
func TestPerftPosition3(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
		// {5, 674624}, // Enable for thorough testing
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftStartingPositionDivide checks the full scenario-2 breakdown
// at depth 4: captures, en-passant, castles, promotions, checks, mates.
func TestPerftStartingPositionDivide(t *testing.T) {
	pos := NewPosition()
	var stats perftStats
	perftDivide(pos, 4, &stats)

	want := perftStats{Nodes: 197281, Captures: 1576, EnPassant: 0, Castles: 0, Promotions: 0, Checks: 469, Mates: 8}
	if stats != want {
		t.Errorf("perft divide at depth 4 = %+v, want %+v", stats, want)
	}
}

// TestPerftKiwipeteDivide checks the full scenario-3 breakdown at depth 3.
func TestPerftKiwipeteDivide(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	var stats perftStats
	perftDivide(pos, 3, &stats)

	want := perftStats{Nodes: 97862, Captures: 17102, EnPassant: 45, Castles: 3162, Promotions: 0, Checks: 993, Mates: 1}
	if stats != want {
		t.Errorf("perft divide at depth 3 = %+v, want %+v", stats, want)
	}
}

// TestPerftCPW3Divide checks the full scenario-4 breakdown at depth 5.
// Depth 5 is slow; skipped under -short.
func TestPerftCPW3Divide(t *testing.T) {
	if testing.Short() {
		t.Skip("depth 5 divide is slow")
	}
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	var stats perftStats
	perftDivide(pos, 5, &stats)

	want := perftStats{Nodes: 674624, Captures: 52051, EnPassant: 1165, Castles: 0, Promotions: 0, Checks: 52950, Mates: 0}
	if stats != want {
		t.Errorf("perft divide at depth 5 = %+v, want %+v", stats, want)
	}
}

// TestPerftCPW5 is scenario 5: a position exercising promotions and a
// pinned knight, at depth 4.
func TestPerftCPW5(t *testing.T) {
	if testing.Short() {
		t.Skip("depth 4 is slow")
	}
	pos, err := ParseFEN("rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	got := Perft(pos, 4)
	if got != 2103487 {
		t.Errorf("Perft(4) = %d, want 2103487", got)
	}
}

// TestPerftEnPassantPin tests the specific en passant horizontal pin edge case.
// FEN: 8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1
// Black pawn on e4 can capture en passant d3, but this would expose the black king
// on a4 to the white rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	// The en passant capture should be illegal
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsEnPassant() {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", m)
		}
	}

	// Verify perft
	// Depth 1: Ka3, Ka5, Kb3, Kb4, Kb5, e3 = 6 moves
	// Depth 2: After e4e3 (14), after king moves (16 each x5) = 14 + 80 = 94
	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 6},
		{2, 94},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}
