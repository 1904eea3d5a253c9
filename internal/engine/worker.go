package engine

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mbergstrom/zugzwang/internal/board"
)

// SearchRequest is one root job submitted to the worker pool: search
// game to depth plies, honoring the optional node and deadline limits
// (zero value meaning "no limit").
type SearchRequest struct {
	Game     *Game
	Depth    int
	NodesMax uint64 // 0 means unlimited
	Deadline time.Time
}

func (r SearchRequest) nodesFail(nodes uint64) bool {
	return r.NodesMax != 0 && nodes > r.NodesMax
}

func (r SearchRequest) timeFails() bool {
	return !r.Deadline.IsZero() && time.Now().After(r.Deadline)
}

// SearchResult is the outcome of searching one position.
type SearchResult struct {
	BestMove   board.Move // zero (board.NoMove) only if there are no legal moves
	Score      Score
	Nodes      uint64
	Unfinished bool // true if the search was cut short for any reason
}

// Job pairs a SearchRequest with the index of its root move in the
// batch, so results can be reassembled in order regardless of which
// worker finishes first.
type Job struct {
	Request    SearchRequest
	BatchIndex int
}

// JobResult is a completed Job's SearchResult, tagged with its batch
// index.
type JobResult struct {
	Result     SearchResult
	BatchIndex int
}

// WorkerGroup owns a pool of search worker goroutines sharing one
// transposition table, coordinated by a WorkerSignalerMaster.
type WorkerGroup struct {
	signaler *WorkerSignalerMaster
	group    *errgroup.Group
	jobs     <-chan Job
	results  chan<- JobResult
	tt       *TranspositionTable
}

// NewWorkerGroup spawns workerCount worker goroutines, reading jobs
// from jobs and sending results to results, all sharing tt.
func NewWorkerGroup(workerCount int, jobs <-chan Job, results chan<- JobResult, tt *TranspositionTable) *WorkerGroup {
	master := NewWorkerSignalerMaster(workerCount)
	g := &errgroup.Group{}
	wg := &WorkerGroup{signaler: master, group: g, jobs: jobs, results: results, tt: tt}

	for i := 0; i < workerCount; i++ {
		signaler := master.CreateSignaler()
		w := &worker{signaler: signaler, jobs: jobs, results: results, tt: tt}
		g.Go(func() error {
			w.run()
			return nil
		})
	}

	return wg
}

// Signaler returns the master signaler controlling this pool's workers.
func (wg *WorkerGroup) Signaler() *WorkerSignalerMaster { return wg.signaler }

// Quit tells every worker to exit and waits for them to do so.
func (wg *WorkerGroup) Quit() {
	wg.signaler.Quit()
	_ = wg.group.Wait()
}

// worker is one search thread: it wakes up, drains whatever jobs are
// queued, searches each to completion (or cancellation), reports a
// result for each, then sleeps until woken again.
type worker struct {
	signaler *WorkerSignaler
	jobs     <-chan Job
	results  chan<- JobResult
	tt       *TranspositionTable
}

func (w *worker) run() {
	for {
		w.signaler.Wakeup()

	drain:
		for {
			select {
			case job, ok := <-w.jobs:
				if !ok {
					break drain
				}
				explorer := job.Request.Game.Explore()
				worst := EndingScore(Checkmate)
				result := w.search(explorer, job.Request, job.Request.Depth, worst, worst.Prev())
				w.results <- JobResult{Result: result, BatchIndex: job.BatchIndex}
			default:
				break drain
			}
		}

		if w.signaler.ShouldQuit() {
			return
		}

		w.signaler.Sleep()
	}
}

// search performs recursive alpha-beta search from node's current
// position to the given depth, returning the best move and score found
// (from the perspective of the side to move at node).
func (w *worker) search(node *GameExplorer, req SearchRequest, depth int, alpha, beta Score) SearchResult {
	if w.signaler.ShouldStop() || req.timeFails() {
		return w.evaluate(node, true)
	}

	game := node.Game()
	hash := game.Zobrist()
	if t, ok := w.tt.Get(hash); ok {
		if game.IsMovePseudoLegal(t.BestMove) && t.Depth >= depth {
			return SearchResult{BestMove: t.BestMove, Score: t.Score, Nodes: 1}
		}
	}

	if depth == 0 {
		return w.quiescence(node, alpha, beta)
	}

	var (
		bestMove   board.Move
		haveBest   bool
		bestScore  Score
		nodes      uint64 = 1
		unfinished bool
	)

	ending := node.ForEachLegalChildNode(MoveOrderMvvLva, func(m board.Move) {
		result := w.search(node, req, depth-1, alpha, beta)
		nodes += result.Nodes

		childScore := result.Score.Prev()
		if !haveBest || childScore.Compare(bestScore) > 0 {
			haveBest = true
			bestScore = childScore
			bestMove = m
		}

		if childScore.Compare(alpha) > 0 {
			alpha = childScore
		}

		if childScore.Compare(beta) >= 0 {
			node.ExhaustMoves()
			return
		}

		if req.nodesFail(nodes) || req.timeFails() || w.signaler.ShouldStop() {
			unfinished = true
			node.ExhaustMoves()
		}
	})

	var score Score
	if ending != nil {
		score = EndingScore(*ending)
	} else {
		score = bestScore
		w.tt.Insert(hash, Transposition{BestMove: bestMove, Score: score, Depth: depth})
	}

	return SearchResult{BestMove: bestMove, Score: score, Nodes: nodes, Unfinished: unfinished}
}

// quiescence is a stand-in for a full capture-only search: the engine's
// current evaluator is material-only, so extending search through
// captures buys nothing it doesn't already have at full depth. A richer
// quiescence search is a natural follow-up once the evaluator grows
// positional terms.
func (w *worker) quiescence(node *GameExplorer, alpha, beta Score) SearchResult {
	if w.signaler.ShouldStop() {
		return w.evaluate(node, true)
	}
	_, _ = alpha, beta
	return w.evaluate(node, false)
}

// evaluate returns a static material evaluation of node's position from
// the perspective of the side to move, or the terminal score if the
// position has no legal moves.
func (w *worker) evaluate(node *GameExplorer, unfinished bool) SearchResult {
	anyMove, ending := node.CheckEnding()
	if ending != nil {
		return SearchResult{Score: EndingScore(*ending), Nodes: 1, Unfinished: unfinished}
	}

	pos := node.Game().Position()
	us := pos.SideToMove
	them := us.Other()

	pawnScore := pieceDiff(pos, board.Pawn, us, them)
	knightScore := pieceDiff(pos, board.Knight, us, them)
	bishopScore := pieceDiff(pos, board.Bishop, us, them)
	rookScore := pieceDiff(pos, board.Rook, us, them)
	queenScore := pieceDiff(pos, board.Queen, us, them)

	centipawns := pawnScore + (knightScore+bishopScore)*3 + rookScore*5 + queenScore*9

	return SearchResult{BestMove: anyMove, Score: Cp(int32(centipawns) * 100), Nodes: 1, Unfinished: unfinished}
}

func pieceDiff(pos *board.Position, pt board.PieceType, us, them board.Color) int {
	return pos.Pieces[us][pt].PopCount() - pos.Pieces[them][pt].PopCount()
}
