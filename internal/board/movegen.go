package board

// GenerateLegalMoves generates all legal moves for the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.PushMoves(ml.Add)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.PushMoves(ml.Add)
	return ml
}

// GenerateCaptures generates all legal captures and promotions.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.pushCaptures(ml.Add)
	return p.filterLegalMoves(ml)
}

// PushMoves is the push-style pseudo-legal generator: it invokes push for
// every pseudo-legal move of the side to move, in family order (pawns,
// knights, bishops, rooks, queens, king, castling). If the side to move's
// king has two or more checkers, only king moves are pushed.
func (p *Position) PushMoves(push func(Move)) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	if p.Checkers.PopCount() >= 2 {
		p.pushKingMoves(push, us)
		return
	}

	p.pushPawnMoves(push, us, enemies, occupied)

	p.pushPieceMoves(push, us, Knight, occupied)
	p.pushPieceMoves(push, us, Bishop, occupied)
	p.pushPieceMoves(push, us, Rook, occupied)
	p.pushPieceMoves(push, us, Queen, occupied)
	p.pushKingMoves(push, us)
	p.pushCastlingMoves(push, us)
}

func (p *Position) pushPieceMoves(push func(Move), us Color, pt PieceType, occupied Bitboard) {
	pieces := p.Pieces[us][pt]
	for pieces != 0 {
		from := pieces.PopLSB()
		var attacks Bitboard
		switch pt {
		case Knight:
			attacks = KnightAttacks(from)
		case Bishop:
			attacks = BishopAttacks(from, occupied)
		case Rook:
			attacks = RookAttacks(from, occupied)
		case Queen:
			attacks = QueenAttacks(from, occupied)
		}
		attacks &^= p.Occupied[us]
		captures := attacks & p.Occupied[us.Other()]
		quiets := attacks &^ captures
		for quiets != 0 {
			push(NewMove(from, quiets.PopLSB()))
		}
		for captures != 0 {
			push(NewCapture(from, captures.PopLSB()))
		}
	}
}

func (p *Position) pushKingMoves(push func(Move), us Color) {
	from := p.KingSquare[us]
	attacks := KingAttacks(from) &^ p.Occupied[us]
	captures := attacks & p.Occupied[us.Other()]
	quiets := attacks &^ captures
	for quiets != 0 {
		push(NewMove(from, quiets.PopLSB()))
	}
	for captures != 0 {
		push(NewCapture(from, captures.PopLSB()))
	}
}

// pushPawnMoves implements spec §4.2's pawn-quiet and pawn-attack rules.
func (p *Position) pushPawnMoves(push func(Move), us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var singlePush, rank3, promotionRank Bitboard
	var pushDir int
	if us == White {
		singlePush = pawns.North() & empty
		rank3 = Rank3
		promotionRank = Rank8
		pushDir = 8
	} else {
		singlePush = pawns.South() & empty
		rank3 = Rank6
		promotionRank = Rank1
		pushDir = -8
	}

	doublePush := func(mid Bitboard) Bitboard {
		if us == White {
			return mid.North() & empty
		}
		return mid.South() & empty
	}(singlePush & rank3)

	promoPush := singlePush & promotionRank
	quietPush := singlePush &^ promotionRank

	for quietPush != 0 {
		to := quietPush.PopLSB()
		push(NewMove(Square(int(to)-pushDir), to))
	}
	for doublePush != 0 {
		to := doublePush.PopLSB()
		push(NewDoublePawnPush(Square(int(to)-2*pushDir), to))
	}
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(push, Square(int(to)-pushDir), to, false)
	}

	var attackL, attackR Bitboard
	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
	}

	emitAttacks := func(bb Bitboard, fromOffset int) {
		quiet := bb &^ promotionRank
		promo := bb & promotionRank
		for quiet != 0 {
			to := quiet.PopLSB()
			push(NewCapture(Square(int(to)-fromOffset), to))
		}
		for promo != 0 {
			to := promo.PopLSB()
			addPromotions(push, Square(int(to)-fromOffset), to, true)
		}
	}
	if us == White {
		emitAttacks(attackL, 7)
		emitAttacks(attackR, 9)
	} else {
		emitAttacks(attackL, -9)
		emitAttacks(attackR, -7)
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var attackers Bitboard
		if us == White {
			attackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			attackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for attackers != 0 {
			push(NewEnPassant(attackers.PopLSB(), p.EnPassant))
		}
	}
}

// addPromotions emits all four promotion pieces, in queen-first order, as
// either plain promotions or promotion-captures.
func addPromotions(push func(Move), from, to Square, capture bool) {
	if capture {
		push(NewPromotionCapture(from, to, Queen))
		push(NewPromotionCapture(from, to, Rook))
		push(NewPromotionCapture(from, to, Bishop))
		push(NewPromotionCapture(from, to, Knight))
		return
	}
	push(NewPromotion(from, to, Queen))
	push(NewPromotion(from, to, Rook))
	push(NewPromotion(from, to, Bishop))
	push(NewPromotion(from, to, Knight))
}

// pushCastlingMoves emits castling moves. Only emitted if the king is not
// in check; kingside additionally requires F/G empty and not attacked,
// queenside requires B empty and C/D not attacked.
func (p *Position) pushCastlingMoves(push func(Move), us Color) {
	if p.Checkers != 0 {
		return
	}
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 &&
			p.AllOccupied&(SquareBB(F1)|SquareBB(G1)) == 0 &&
			!p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
			push(NewKingCastle(E1, G1))
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 &&
			p.AllOccupied&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 &&
			!p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
			push(NewQueenCastle(E1, C1))
		}
		return
	}
	if p.CastlingRights&BlackKingSideCastle != 0 &&
		p.AllOccupied&(SquareBB(F8)|SquareBB(G8)) == 0 &&
		!p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
		push(NewKingCastle(E8, G8))
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 &&
		p.AllOccupied&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 &&
		!p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
		push(NewQueenCastle(E8, C8))
	}
}

func (p *Position) pushCaptures(push func(Move)) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	p.pushPawnMoves(func(m Move) {
		if m.IsCapture() || m.IsPromotion() {
			push(m)
		}
	}, us, enemies, occupied)

	for _, pt := range [4]PieceType{Knight, Bishop, Rook, Queen} {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var attacks Bitboard
			switch pt {
			case Knight:
				attacks = KnightAttacks(from)
			case Bishop:
				attacks = BishopAttacks(from, occupied)
			case Rook:
				attacks = RookAttacks(from, occupied)
			case Queen:
				attacks = QueenAttacks(from, occupied)
			}
			attacks &= enemies
			for attacks != 0 {
				push(NewCapture(from, attacks.PopLSB()))
			}
		}
	}

	from := p.KingSquare[us]
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		push(NewCapture(from, attacks.PopLSB()))
	}
}

// filterLegalMoves filters out illegal moves (those that leave king in check).
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			result.Add(m)
		}
	}

	return result
}

// IsLegal returns true if the move is legal (doesn't leave king in check).
// King moves are checked by attack-set membership; every other move is
// validated by make/unmake, per spec §4.2.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			return true // squares already validated during generation
		}
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	undo := p.MakeMove(m)
	if !undo.valid {
		return false
	}
	attacked := p.IsSquareAttacked(ksq, them)
	p.UnmakeMove(m, undo)
	return !attacked
}

// IsMovePseudoLegal reports whether the generator would emit m in this
// position: piece at from belongs to the side to move, the destination
// agrees with the hint's capture bit, and the hint's geometric and rights
// preconditions hold. Gates TryMakeMove so that arbitrary (e.g.
// TT-retrieved or UCI-supplied) moves can be checked before being applied.
func (p *Position) IsMovePseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	us := p.SideToMove
	from, to := m.From(), m.To()
	if !from.IsValid() || !to.IsValid() || from == to {
		return false
	}
	piece := p.PieceAt(from)
	if piece == NoPiece || piece.Color() != us {
		return false
	}
	hint := m.HintOf()

	switch hint {
	case HintEnPassant:
		if piece.Type() != Pawn || to != p.EnPassant {
			return false
		}
		return PawnAttacks(from, us)&SquareBB(to) != 0
	case HintKingCastle, HintQueenCastle:
		if piece.Type() != King {
			return false
		}
		legal := p.GeneratePseudoLegalMoves()
		return legal.Contains(m)
	}

	destOccupied := !p.IsEmpty(to)
	if destOccupied && p.Occupied[us]&SquareBB(to) != 0 {
		return false // can't land on our own piece
	}
	if hint.IsCapture() != destOccupied {
		return false
	}

	if hint.IsPromotion() {
		if piece.Type() != Pawn {
			return false
		}
		promoRank := Rank8
		if us == Black {
			promoRank = Rank1
		}
		if SquareBB(to)&promoRank == 0 {
			return false
		}
	}

	switch piece.Type() {
	case Pawn:
		return p.pawnMoveGeometryOK(from, to, us, hint)
	case Knight:
		return KnightAttacks(from)&SquareBB(to) != 0
	case Bishop:
		return BishopAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case Rook:
		return RookAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case Queen:
		return QueenAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case King:
		return KingAttacks(from)&SquareBB(to) != 0
	}
	return false
}

func (p *Position) pawnMoveGeometryOK(from, to Square, us Color, hint Hint) bool {
	dir := 8
	if us == Black {
		dir = -8
	}
	delta := int(to) - int(from)
	if hint == HintDoublePawn {
		startRank := 1
		if us == Black {
			startRank = 6
		}
		return from.Rank() == startRank && delta == 2*dir &&
			p.IsEmpty(Square(int(from)+dir)) && p.IsEmpty(to)
	}
	if hint.IsCapture() {
		return PawnAttacks(from, us)&SquareBB(to) != 0
	}
	return delta == dir && p.IsEmpty(to)
}

// MakeMove applies a move to the position and returns undo information.
func (p *Position) MakeMove(m Move) ChessUnmove {
	undo := ChessUnmove{
		Move:           m,
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return undo
	}
	undo.valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if m.HintOf() == HintDoublePawn {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.UpdateCheckers()

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo ChessUnmove) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.movePiece(to, from)

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}
	p.UpdateCheckers()
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw (stalemate, 50-move, insufficient material).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}
	return false
}
