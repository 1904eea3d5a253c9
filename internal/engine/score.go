// Package engine implements the search: a transposition-table-backed,
// multi-threaded iterative-deepening alpha-beta search over the board
// package's position representation.
package engine

import "fmt"

// scoreKind discriminates the three Score variants.
type scoreKind uint8

const (
	scoreCp scoreKind = iota
	scoreMating
	scoreMated
)

// Score is how advantageous a position is for the side to move. It is a
// tagged union over three variants: a forced mate in n plies in this
// side's favor (Mating), a forced mate in n plies against this side
// (Mated), or a centipawn evaluation (Cp).
type Score struct {
	kind scoreKind
	n    uint64 // plies to mate, for Mating/Mated
	cp   int32  // centipawns, for Cp
}

// Cp constructs a centipawn score.
func Cp(v int32) Score { return Score{kind: scoreCp, cp: v} }

// Mating constructs a "forced mate in n plies, in our favor" score.
func Mating(n uint64) Score { return Score{kind: scoreMating, n: n} }

// Mated constructs a "forced mate in n plies against us" score.
func Mated(n uint64) Score { return Score{kind: scoreMated, n: n} }

// GameEnding classifies how a game with no legal moves ended.
type GameEnding int

const (
	Stalemate GameEnding = iota
	Checkmate
)

// EndingScore returns the score for a position that has no legal moves.
func EndingScore(ending GameEnding) Score {
	switch ending {
	case Checkmate:
		return Mated(0)
	default:
		return Cp(0)
	}
}

// IsMate reports whether the score represents a forced mate, in either
// direction.
func (s Score) IsMate() bool { return s.kind == scoreMating || s.kind == scoreMated }

// IsCp reports whether the score is a plain centipawn evaluation.
func (s Score) IsCp() bool { return s.kind == scoreCp }

// CpValue returns the centipawn value. Only meaningful if IsCp.
func (s Score) CpValue() int32 { return s.cp }

// MateIn returns the number of plies to mate and its sign: positive
// means this side mates, negative means this side gets mated. Only
// meaningful if IsMate.
func (s Score) MateIn() int64 {
	if s.kind == scoreMated {
		return -int64(s.n)
	}
	return int64(s.n)
}

// Prev returns the score as seen by the other player on the previous
// ply, the inverse of Next: Mating(n) becomes Mated(n), Mated(n)
// becomes Mating(n+1), and a centipawn score just flips sign.
func (s Score) Prev() Score {
	switch s.kind {
	case scoreMating:
		return Mated(s.n)
	case scoreMated:
		return Mating(s.n + 1)
	default:
		return Cp(-s.cp)
	}
}

// Next returns the score as seen by the other player on the next ply.
func (s Score) Next() Score {
	switch s.kind {
	case scoreMating:
		return Mated(s.n - 1)
	case scoreMated:
		return Mating(s.n)
	default:
		return Cp(-s.cp)
	}
}

// Compare returns a negative number if s is worse than other, zero if
// equal, and a positive number if s is better than other, all from the
// same side's perspective. Mating beats every Cp beats every Mated;
// among Mating scores a shorter mate is better (so it sorts higher);
// among Mated scores a longer survival is "better" (less bad), so it
// also sorts higher for a larger n.
func (s Score) Compare(other Score) int {
	if s.kind == scoreMating && other.kind == scoreMating {
		return cmpUint64(other.n, s.n)
	}
	if s.kind == scoreMated && other.kind == scoreMated {
		return cmpUint64(s.n, other.n)
	}
	if s.kind == other.kind {
		return cmpInt32(s.cp, other.cp)
	}
	return rankOf(s.kind) - rankOf(other.kind)
}

// Less reports whether s is strictly worse than other.
func (s Score) Less(other Score) bool { return s.Compare(other) < 0 }

func rankOf(k scoreKind) int {
	switch k {
	case scoreMating:
		return 2
	case scoreCp:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (s Score) String() string {
	switch s.kind {
	case scoreMating:
		return fmt.Sprintf("mate %d", s.n)
	case scoreMated:
		return fmt.Sprintf("mate -%d", s.n)
	default:
		return fmt.Sprintf("cp %d", s.cp)
	}
}

// UCIString renders the score the way a "go"-command response's "info
// score" token expects: "cp <n>" or "mate <n>", mate plies converted to
// full moves as UCI clients expect.
func (s Score) UCIString() string {
	switch s.kind {
	case scoreMating:
		return fmt.Sprintf("mate %d", (s.n+1)/2)
	case scoreMated:
		if s.n == 0 {
			return "mate 0"
		}
		return fmt.Sprintf("mate -%d", (s.n+1)/2)
	default:
		return fmt.Sprintf("cp %d", s.cp)
	}
}
