package board

import (
	"fmt"
	"sort"
)

// Hint classifies the shape of a ChessMove: capture/quiet, castling side,
// en-passant, and (for promotions) the target piece. Bit 3 marks a
// promotion, bit 2 marks a capture; for promotions the low two bits pick
// the promoted piece (Knight=0, Bishop=1, Rook=2, Queen=3).
type Hint uint8

// Hint values. Sixteen variants as required by the move model: quiet,
// double pawn push, the two castle directions, plain capture, en-passant
// capture, and the eight promotion/promotion-capture combinations.
const (
	HintQuiet         Hint = 0
	HintDoublePawn    Hint = 1
	HintKingCastle    Hint = 2
	HintQueenCastle   Hint = 3
	HintCapture       Hint = 4
	HintEnPassant     Hint = 5
	_reserved6        Hint = 6
	_reserved7        Hint = 7
	HintKnightPromo   Hint = 8
	HintBishopPromo   Hint = 9
	HintRookPromo     Hint = 10
	HintQueenPromo    Hint = 11
	HintKnightPromoCap Hint = 12
	HintBishopPromoCap Hint = 13
	HintRookPromoCap   Hint = 14
	HintQueenPromoCap  Hint = 15
)

var promotionPieceByLowBits = [4]PieceType{Knight, Bishop, Rook, Queen}

func promoLowBits(p PieceType) Hint {
	switch p {
	case Knight:
		return 0
	case Bishop:
		return 1
	case Rook:
		return 2
	case Queen:
		return 3
	default:
		panic("board: not a promotion piece")
	}
}

// IsCapture reports whether the hint's capture bit is set.
func (h Hint) IsCapture() bool { return h&4 != 0 }

// IsPromotion reports whether the hint's promotion bit is set.
func (h Hint) IsPromotion() bool { return h&8 != 0 }

// Promotion returns the promoted-to piece. Only meaningful if IsPromotion.
func (h Hint) Promotion() PieceType { return promotionPieceByLowBits[h&3] }

func (h Hint) String() string {
	switch h {
	case HintQuiet:
		return "quiet"
	case HintDoublePawn:
		return "double-pawn"
	case HintKingCastle:
		return "king-castle"
	case HintQueenCastle:
		return "queen-castle"
	case HintCapture:
		return "capture"
	case HintEnPassant:
		return "en-passant"
	default:
		if h.IsPromotion() {
			s := h.Promotion().String() + "-promotion"
			if h.IsCapture() {
				s += "-capture"
			}
			return s
		}
		return "unknown"
	}
}

// Move is a packed ChessMove: bits 0-3 hint, bits 4-9 from, bits 10-15 to.
type Move uint16

// NoMove represents an invalid or null move.
const NoMove Move = 0

func pack(from, to Square, h Hint) Move {
	return Move(h) | Move(from)<<4 | Move(to)<<10
}

// NewMove constructs a quiet move. It never sets the capture bit; use
// NewCapture for captures.
func NewMove(from, to Square) Move {
	return pack(from, to, HintQuiet)
}

// NewCapture constructs a plain capture move.
func NewCapture(from, to Square) Move {
	return pack(from, to, HintCapture)
}

// NewDoublePawnPush constructs a double pawn push move.
func NewDoublePawnPush(from, to Square) Move {
	return pack(from, to, HintDoublePawn)
}

// NewEnPassant creates an en-passant capture move.
func NewEnPassant(from, to Square) Move {
	return pack(from, to, HintEnPassant)
}

// NewKingCastle creates a kingside castling move (king's own movement).
func NewKingCastle(from, to Square) Move {
	return pack(from, to, HintKingCastle)
}

// NewQueenCastle creates a queenside castling move (king's own movement).
func NewQueenCastle(from, to Square) Move {
	return pack(from, to, HintQueenCastle)
}

// NewPromotion creates a non-capturing promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return pack(from, to, 8|promoLowBits(promo))
}

// NewPromotionCapture creates a capturing promotion move.
func NewPromotionCapture(from, to Square, promo PieceType) Move {
	return pack(from, to, 8|4|promoLowBits(promo))
}

// From returns the origin square.
func (m Move) From() Square { return Square((m >> 4) & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square((m >> 10) & 0x3F) }

// HintOf returns the move's shape hint.
func (m Move) HintOf() Hint { return Hint(m & 0xF) }

// Promotion returns the promotion piece (only valid if IsPromotion).
func (m Move) Promotion() PieceType { return m.HintOf().Promotion() }

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool { return m.HintOf().IsPromotion() }

// IsCastling returns true if this is either castling move.
func (m Move) IsCastling() bool {
	h := m.HintOf()
	return h == HintKingCastle || h == HintQueenCastle
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool { return m.HintOf() == HintEnPassant }

// IsCapture returns true if this move captures a piece (including en passant).
func (m Move) IsCapture() bool { return m.HintOf().IsCapture() }

// IsQuiet returns true if this move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool { return !m.IsCapture() && !m.IsPromotion() }

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		s += string(promoChars[m.HintOf()&3])
	}

	return s
}

// ParseMove parses a UCI format move string relative to pos, classifying
// its hint by inspecting the moving piece and destination.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	isCapture := !pos.IsEmpty(to)

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		if isCapture {
			return NewPromotionCapture(from, to, promo), nil
		}
		return NewPromotion(from, to, promo), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		if to.File() == 6 {
			return NewKingCastle(from, to), nil
		}
		return NewQueenCastle(from, to), nil
	}

	if pt == Pawn && to == pos.EnPassant && to.File() != from.File() {
		return NewEnPassant(from, to), nil
	}

	if pt == Pawn && abs(to.Rank()-from.Rank()) == 2 {
		return NewDoublePawnPush(from, to), nil
	}

	if isCapture {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations. It doubles
// as the explorer's reentrant scratch buffer: PushGroup/PopGroup bracket a
// recursive level so nested generation never reallocates.
type MoveList struct {
	moves  [512]Move
	count  int
	groups []int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
	ml.groups = ml.groups[:0]
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// PushGroup records the current top of the buffer so a nested generation
// can be undone with PopGroup without disturbing the caller's moves.
func (ml *MoveList) PushGroup() {
	ml.groups = append(ml.groups, ml.count)
}

// PopGroup truncates the buffer back to the most recent PushGroup mark.
func (ml *MoveList) PopGroup() {
	n := len(ml.groups)
	ml.count = ml.groups[n-1]
	ml.groups = ml.groups[:n-1]
}

// SortGroupBy orders the moves in the current group (the ones pushed
// since the most recent PushGroup) so that, when popped one at a time
// via PopMove, they come out in decreasing order of less's preference:
// less(a, b) reports whether a should be searched before b. Moves that
// should be searched first end up at the tail of the group, since
// PopMove removes from the end.
func (ml *MoveList) SortGroupBy(less func(a, b Move) bool) {
	floor := 0
	if n := len(ml.groups); n > 0 {
		floor = ml.groups[n-1]
	}
	group := ml.moves[floor:ml.count]
	sort.Slice(group, func(i, j int) bool {
		// Reverse the comparator: the most-preferred move must land at
		// the highest index so it is the first one popped.
		return less(group[j], group[i])
	})
}

// PopMove removes and returns the last move in the current group, or
// (NoMove, false) if the group is empty.
func (ml *MoveList) PopMove() (Move, bool) {
	floor := 0
	if n := len(ml.groups); n > 0 {
		floor = ml.groups[n-1]
	}
	if ml.count <= floor {
		return NoMove, false
	}
	ml.count--
	return ml.moves[ml.count], true
}

// ChessUnmove is the reversible delta produced by Position.MakeMove and
// consumed by Position.UnmakeMove.
type ChessUnmove struct {
	Move           Move
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64

	// valid is false when MakeMove was asked to apply a move with no piece
	// on its origin square; UnmakeMove must not be called in that case.
	valid bool
}

// UndoInfo is retained as an alias of ChessUnmove for callers written
// against the teacher's original naming.
type UndoInfo = ChessUnmove
