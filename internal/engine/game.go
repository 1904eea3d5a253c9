package engine

import (
	"fmt"

	"github.com/mbergstrom/zugzwang/internal/board"
)

// MaxGameHistory bounds the ply history stack. Exceeding it is a
// programming error, not a condition the engine recovers from.
const MaxGameHistory = 4096

type plyHistory struct {
	hash   uint64
	move   board.Move
	unmove board.ChessUnmove
}

// Game wraps a board.Position with a bounded move history, giving the
// search repetition detection and an undo stack that cannot silently
// grow without bound.
type Game struct {
	position *board.Position
	history  []plyHistory
}

// NewGame returns a Game starting from the standard opening position.
func NewGame() *Game {
	return &Game{position: board.NewPosition()}
}

// NewGameFromFEN parses fen and returns a Game starting from it.
func NewGameFromFEN(fen string) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{position: pos}, nil
}

// Position returns the current position. Callers must not mutate it
// directly; use TryMakeMove/TryUnmakeMove or Explore.
func (g *Game) Position() *board.Position { return g.position }

// Zobrist returns the current position's hash.
func (g *Game) Zobrist() uint64 { return g.position.Hash }

// IsCheck reports whether the side to move is in check.
func (g *Game) IsCheck() bool { return g.position.InCheck() }

// wasCheckIgnored reports whether the side that just moved left its
// own king in check; used to reject illegal moves after applying them.
func (g *Game) wasCheckIgnored() bool {
	them := g.position.SideToMove
	us := them.Other()
	return g.position.IsSquareAttacked(g.position.KingSquare[us], them)
}

// CountRepetitions returns how many times the current position has
// occurred earlier in this game's history.
func (g *Game) CountRepetitions() int {
	hash := g.Zobrist()
	n := 0
	for _, ply := range g.history {
		if ply.hash == hash {
			n++
		}
	}
	return n
}

// IsHistoryEmpty reports whether no move has been made yet.
func (g *Game) IsHistoryEmpty() bool { return len(g.history) == 0 }

// IsMovePseudoLegal reports whether m is at least pseudo-legal in the
// current position.
func (g *Game) IsMovePseudoLegal(m board.Move) bool {
	return g.position.IsMovePseudoLegal(m)
}

// TryMakeMove applies m if it is legal, returning whether it was.
func (g *Game) TryMakeMove(m board.Move) bool {
	if !g.IsMovePseudoLegal(m) {
		return false
	}
	return g.makeMoveUnchecked(m)
}

// TryUnmakeMove undoes the last move made, returning false if the
// history is already empty.
func (g *Game) TryUnmakeMove() bool {
	if g.IsHistoryEmpty() {
		return false
	}
	g.unmakeMoveUnchecked()
	return true
}

func (g *Game) makeMoveUnchecked(m board.Move) bool {
	hash := g.Zobrist()
	undo := g.position.MakeMove(m)
	if g.wasCheckIgnored() {
		g.position.UnmakeMove(m, undo)
		return false
	}
	if len(g.history) >= MaxGameHistory {
		panic("engine: game history exceeded MaxGameHistory plies")
	}
	g.history = append(g.history, plyHistory{hash: hash, move: m, unmove: undo})
	return true
}

func (g *Game) unmakeMoveUnchecked() {
	n := len(g.history) - 1
	ply := g.history[n]
	g.history = g.history[:n]
	g.position.UnmakeMove(ply.move, ply.unmove)
}

// Clone returns an independent copy of the game, including its
// position and ply history, so a search worker can make moves on it
// without disturbing the original.
func (g *Game) Clone() *Game {
	history := make([]plyHistory, len(g.history))
	copy(history, g.history)
	return &Game{position: g.position.Copy(), history: history}
}

// Explore returns an explorer for iterating this game's legal moves.
// The explorer restores the game's state when done inspecting it.
func (g *Game) Explore() *GameExplorer {
	return &GameExplorer{game: g, moveList: board.NewMoveList()}
}

// GameEnding terminal string, used only for debug/logging.
func (e GameEnding) String() string {
	switch e {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return fmt.Sprintf("GameEnding(%d)", int(e))
	}
}

// GameExplorer walks a Game's legal moves without allocating, using a
// grouped scratch move list so nested recursive exploration (as done by
// a search) never needs its own buffer.
type GameExplorer struct {
	game     *Game
	moveList *board.MoveList
}

// Game returns the explorer's underlying game.
func (e *GameExplorer) Game() *Game { return e.game }

// MapMoveIfLegal makes m if legal, invokes op, then unmakes it.
// Returns whether the move was legal.
func (e *GameExplorer) MapMoveIfLegal(m board.Move, op func()) bool {
	if !e.game.TryMakeMove(m) {
		return false
	}
	op()
	e.game.TryUnmakeMove()
	return true
}

// ForEachLegalChildNode generates every legal move from the current
// position, orders them per ordering, and invokes op(move) for each
// with the move already applied and the game restored afterward.
// Returns the GameEnding if there were no legal moves at all.
func (e *GameExplorer) ForEachLegalChildNode(ordering MoveOrdering, op func(m board.Move)) *GameEnding {
	e.moveList.PushGroup()
	e.game.position.PushMoves(func(m board.Move) {
		e.moveList.Add(m)
	})

	if ordering == MoveOrderMvvLva {
		pos := e.game.position
		e.moveList.SortGroupBy(func(a, b board.Move) bool {
			return mvvLvaLess(pos, a, b)
		})
	}

	hasMoves := false
	for {
		m, ok := e.moveList.PopMove()
		if !ok {
			break
		}
		if e.game.makeMoveUnchecked(m) {
			hasMoves = true
			op(m)
			e.game.unmakeMoveUnchecked()
		}
	}

	e.moveList.PopGroup()

	if hasMoves {
		return nil
	}
	var ending GameEnding
	if e.game.IsCheck() {
		ending = Checkmate
	} else {
		ending = Stalemate
	}
	return &ending
}

// CheckEnding returns any legal move for the current position, or the
// GameEnding if none exists.
func (e *GameExplorer) CheckEnding() (board.Move, *GameEnding) {
	var any board.Move
	ending := e.ForEachLegalChildNode(MoveOrderNone, func(m board.Move) {
		any = m
		e.ExhaustMoves()
	})
	return any, ending
}

// ExhaustMoves discards the rest of the moves in the current
// ForEachLegalChildNode generation, used to short-circuit a caller
// that has seen enough (e.g. after a beta cutoff).
func (e *GameExplorer) ExhaustMoves() {
	for {
		if _, ok := e.moveList.PopMove(); !ok {
			break
		}
	}
}
