package engine

import "github.com/mbergstrom/zugzwang/internal/board"

// MoveOrdering selects how ForEachLegalChildNode orders the move list
// before traversal.
type MoveOrdering int

const (
	// MoveOrderNone applies no sort; since the move list is consumed
	// from its tail, moves are traversed in reverse generator order.
	MoveOrderNone MoveOrdering = iota
	// MoveOrderMvvLva traverses captures first, ranked by most-valuable
	// victim / least-valuable attacker, then quiet moves. The sort is
	// not stable, so the order among quiet moves is not defined.
	MoveOrderMvvLva
)

var mvvLvaPieceValue = [6]int{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
	board.King:   0,
}

// mvvLvaLess reports whether a should be searched before b under
// MVV-LVA ordering: captures before quiets, among captures the
// higher-value victim first, ties broken by the lower-value attacker
// first.
func mvvLvaLess(pos *board.Position, a, b board.Move) bool {
	aScore, aCapture := mvvLvaScore(pos, a)
	bScore, bCapture := mvvLvaScore(pos, b)
	if aCapture != bCapture {
		return aCapture
	}
	if !aCapture {
		return false
	}
	return aScore > bScore
}

func mvvLvaScore(pos *board.Position, m board.Move) (score int, isCapture bool) {
	if !m.IsCapture() {
		return 0, false
	}
	var victim board.PieceType
	if m.IsEnPassant() {
		victim = board.Pawn
	} else {
		victim = pos.PieceAt(m.To()).Type()
	}
	attacker := pos.PieceAt(m.From()).Type()
	return mvvLvaPieceValue[victim]*16 - mvvLvaPieceValue[attacker], true
}
