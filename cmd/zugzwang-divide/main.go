// Command zugzwang-divide runs a perft divide from a FEN and depth,
// printing one legal move per line with its subtree node count.
//
// The parsed Position is stored in an in-memory cache keyed by FEN. The
// cache lives only for the process, and each run parses a single FEN,
// so a run never finds an earlier run's Position in it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/mbergstrom/zugzwang/internal/board"
)

var (
	fen   = flag.String("fen", "", "FEN to divide from (default: starting position)")
	depth = flag.Int("depth", 1, "divide depth")
)

func main() {
	flag.Parse()

	cache, err := ristretto.NewCache(&ristretto.Config[string, *board.Position]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "divide: cache init failed: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	pos, err := positionFor(cache, *fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "divide: %v\n", err)
		os.Exit(1)
	}

	moves := pos.GenerateLegalMoves()
	var total int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes := board.Perft(pos, *depth-1)
		pos.UnmakeMove(m, undo)

		total += nodes
		fmt.Printf("%s: %d\n", m.String(), nodes)
	}
	fmt.Printf("\nTotal: %d\n", total)
}

func positionFor(cache *ristretto.Cache[string, *board.Position], fenStr string) (*board.Position, error) {
	if fenStr == "" {
		return board.NewPosition(), nil
	}

	if cached, ok := cache.Get(fenStr); ok {
		return cached.Copy(), nil
	}

	pos, err := board.ParseFEN(fenStr)
	if err != nil {
		return nil, err
	}

	cache.Set(fenStr, pos, 1)
	cache.Wait()
	return pos.Copy(), nil
}
