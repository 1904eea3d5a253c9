package engine

import (
	"sync/atomic"

	"github.com/mbergstrom/zugzwang/internal/board"
)

// Transposition is a past search's result for one position: the move
// to try first, its score, and the depth it was searched to.
type Transposition struct {
	BestMove board.Move
	Score    Score
	Depth    int
}

// packed data word layout (bits, LSB first):
//
//	0-15   BestMove
//	16-23  Depth (0-255)
//	24-61  Score payload
//	62-63  Score kind (1 Mating, 2 Mated, 3 Cp)
//
// The hash word and data word are stored as an independent pair of
// atomics per slot. A search thread can observe a data word from one
// insert paired with a hash word from a different, concurrent insert
// ("tearing"); the resulting garbled entry is caught by re-validating
// BestMove with Game.IsMovePseudoLegal before it is ever trusted, per
// the same tolerance the original lock-free table relies on.
func packTransposition(t Transposition) uint64 {
	var scoreBits uint64
	switch {
	case t.Score.kind == scoreMating:
		scoreBits = 1<<38 | uint64(t.Score.n)
	case t.Score.kind == scoreMated:
		scoreBits = 2<<38 | uint64(t.Score.n)
	default:
		scoreBits = 3<<38 | uint64(uint32(t.Score.cp))
	}
	depth := t.Depth
	if depth < 0 {
		depth = 0
	}
	if depth > 255 {
		depth = 255
	}
	return uint64(t.BestMove) |
		uint64(depth)<<16 |
		scoreBits<<24
}

func unpackTransposition(data uint64) Transposition {
	bestMove := board.Move(data & 0xFFFF)
	depth := int((data >> 16) & 0xFF)
	scoreBits := data >> 24
	kind := scoreBits >> 38
	payload := scoreBits & ((1 << 38) - 1)

	var score Score
	switch kind {
	case 1:
		score = Mating(payload)
	case 2:
		score = Mated(payload)
	default:
		score = Cp(int32(uint32(payload)))
	}

	return Transposition{BestMove: bestMove, Score: score, Depth: depth}
}

type ttSlot struct {
	hash atomic.Uint64
	data atomic.Uint64
}

// TranspositionTable is a fixed-capacity, concurrency-tolerant
// transposition table. Slots are addressed by hash modulo capacity and
// always overwritten on insert; concurrent readers and writers may tear
// a slot's two words apart, which callers must tolerate by re-verifying
// whatever they read (see packTransposition).
type TranspositionTable struct {
	slots []ttSlot
}

// NewTranspositionTable returns a table sized to hold roughly
// sizeMB megabytes of entries. Panics if sizeMB is non-positive.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB <= 0 {
		panic("engine: transposition table size must be positive")
	}
	const bytesPerSlot = 16 // two uint64 words
	capacity := (sizeMB * 1024 * 1024) / bytesPerSlot
	if capacity < 1 {
		capacity = 1
	}
	return &TranspositionTable{slots: make([]ttSlot, capacity)}
}

func (t *TranspositionTable) index(hash uint64) uint64 {
	return hash % uint64(len(t.slots))
}

// Get returns the transposition stored for hash, if the slot's stored
// hash matches exactly.
func (t *TranspositionTable) Get(hash uint64) (Transposition, bool) {
	slot := &t.slots[t.index(hash)]
	storedHash := slot.hash.Load()
	data := slot.data.Load()
	if storedHash != hash {
		return Transposition{}, false
	}
	return unpackTransposition(data), true
}

// Insert stores tr under hash, unconditionally overwriting whatever was
// in that slot.
func (t *TranspositionTable) Insert(hash uint64, tr Transposition) {
	slot := &t.slots[t.index(hash)]
	slot.data.Store(packTransposition(tr))
	slot.hash.Store(hash)
}

// Clear resets every slot.
func (t *TranspositionTable) Clear() {
	for i := range t.slots {
		t.slots[i].hash.Store(0)
		t.slots[i].data.Store(0)
	}
}

// Len returns the table's slot capacity.
func (t *TranspositionTable) Len() int { return len(t.slots) }
