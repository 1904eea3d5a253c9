package engine

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/mbergstrom/zugzwang/internal/board"
)

// GoParams mirrors the UCI "go" command's optional parameters.
type GoParams struct {
	SearchMoves []board.Move // empty means "search every legal move"
	WTime, BTime time.Duration
	WInc, BInc   time.Duration
	MoveTime     time.Duration
	MovesToGo    int
	Depth        int // 0 means unspecified
	Nodes        uint64
	Mate         uint64
	Infinite     bool
	Ponder       bool
}

// SearchOutcome is what a "go" eventually produces: the move to play
// and, optionally, a move to ponder on.
type SearchOutcome struct {
	BestMove board.Move // board.NoMove if no legal move existed
	Ponder   board.Move
}

// SearchCommand is a message sent to a SearchServer's command channel.
type SearchCommand struct {
	kind        searchCmdKind
	game        *Game
	params      GoParams
}

type searchCmdKind int

const (
	cmdGo searchCmdKind = iota
	cmdStop
	cmdPonderHit
	cmdUciNewGame
)

// GoCmd builds a command that starts a search over game with params.
func GoCmd(game *Game, params GoParams) SearchCommand {
	return SearchCommand{kind: cmdGo, game: game, params: params}
}

// StopCmd builds a command that cancels any running search.
func StopCmd() SearchCommand { return SearchCommand{kind: cmdStop} }

// PonderHitCmd builds a command that leaves pondering mode.
func PonderHitCmd() SearchCommand { return SearchCommand{kind: cmdPonderHit} }

// UciNewGameCmd builds a command that clears the transposition table if
// no search is running; while one is, the command is dropped.
func UciNewGameCmd() SearchCommand { return SearchCommand{kind: cmdUciNewGame} }

const maxRunningDepth = 255 // u8 ceiling per the spec

type rootMove struct {
	move   board.Move
	result *SearchResult
}

type searchLimits struct {
	depth    int // -1 = unlimited
	nodes    uint64
	mate     uint64
	deadline time.Time
}

type searchProgress struct {
	game         *Game
	moves        []rootMove
	limits       searchLimits
	runningDepth int
	pendingCount int
	isPondering  bool
}

// SearchServer is the iterative-deepening sub-server: a single
// goroutine event loop selecting between incoming SearchCommands and
// worker SearchResults, driving ParallelSearch one depth at a time.
type SearchServer struct {
	scheduler *ParallelSearch
	cmds      chan SearchCommand
	out       chan SearchOutcome
	log       logr.Logger
}

// NewSearchServer spawns a SearchServer with workerCount workers and a
// transposition table sized ttSizeMB megabytes, and starts its event
// loop goroutine.
func NewSearchServer(workerCount, ttSizeMB int, log logr.Logger) *SearchServer {
	s := &SearchServer{
		scheduler: NewParallelSearch(workerCount, ttSizeMB),
		cmds:      make(chan SearchCommand, 16),
		out:       make(chan SearchOutcome, 16),
		log:       log,
	}
	go s.run()
	return s
}

// Send enqueues a command for the server's event loop.
func (s *SearchServer) Send(cmd SearchCommand) { s.cmds <- cmd }

// Outcomes returns the channel on which completed searches are
// reported, one per Go command.
func (s *SearchServer) Outcomes() <-chan SearchOutcome { return s.out }

// Quit tears down the server's worker pool. The server must not be
// used after this.
func (s *SearchServer) Quit() { s.scheduler.Quit() }

func (s *SearchServer) run() {
	var progress *searchProgress

	for {
		select {
		case cmd, ok := <-s.cmds:
			if !ok {
				return
			}
			progress = s.handleCommand(progress, cmd)
		case r := <-s.scheduler.ResultsChan():
			progress = s.update(progress, r)
		}
	}
}

func (s *SearchServer) handleCommand(progress *searchProgress, cmd SearchCommand) *searchProgress {
	switch cmd.kind {
	case cmdGo:
		return s.handleGo(progress, cmd.game, cmd.params)
	case cmdStop:
		return s.handleStop(progress)
	case cmdPonderHit:
		return s.handlePonderHit(progress)
	case cmdUciNewGame:
		if progress == nil {
			s.scheduler.ClearTT()
		}
		return progress
	default:
		return progress
	}
}

func (s *SearchServer) handleGo(progress *searchProgress, game *Game, params GoParams) *searchProgress {
	if progress != nil {
		panic("engine: go received while a search is already in progress")
	}

	var moves []rootMove
	if len(params.SearchMoves) > 0 {
		moves = make([]rootMove, 0, len(params.SearchMoves))
		for _, m := range params.SearchMoves {
			if game.IsMovePseudoLegal(m) {
				moves = append(moves, rootMove{move: m})
			}
		}
	}
	if len(moves) == 0 {
		explorer := game.Explore()
		explorer.ForEachLegalChildNode(MoveOrderMvvLva, func(m board.Move) {
			moves = append(moves, rootMove{move: m})
		})
	}

	deadline := s.computeDeadline(game, params)
	depthMax := -1
	if params.Depth > 0 && !params.Infinite {
		depthMax = params.Depth - 1
	}

	progress = &searchProgress{
		game:  game,
		moves: moves,
		limits: searchLimits{
			depth:    depthMax,
			nodes:    params.Nodes,
			mate:     params.Mate,
			deadline: deadline,
		},
		isPondering:  params.Ponder,
		runningDepth: 0,
	}

	if len(moves) == 0 {
		s.out <- SearchOutcome{BestMove: board.NoMove}
		return nil
	}

	s.prepare(progress)
	return progress
}

func (s *SearchServer) computeDeadline(game *Game, params GoParams) time.Time {
	if params.MoveTime > 0 {
		return time.Now().Add(params.MoveTime)
	}
	pos := game.Position()
	var clock, inc time.Duration
	if pos.SideToMove == board.White {
		clock, inc = params.WTime, params.WInc
	} else {
		clock, inc = params.BTime, params.BInc
	}
	if clock <= 0 {
		return time.Time{}
	}
	return time.Now().Add(clock + inc)
}

func (s *SearchServer) handleStop(progress *searchProgress) *searchProgress {
	if progress == nil {
		return nil
	}
	s.scheduler.MarkStopped()
	for progress.pendingCount != 0 {
		r := <-s.scheduler.ResultsChan()
		progress = s.applyResult(progress, r)
	}
	return s.check(progress, true)
}

func (s *SearchServer) handlePonderHit(progress *searchProgress) *searchProgress {
	if progress == nil {
		return nil
	}
	progress.isPondering = false
	if progress.pendingCount == 0 {
		return s.check(progress, false)
	}
	return progress
}

func (s *SearchServer) update(progress *searchProgress, r JobResult) *searchProgress {
	if progress == nil {
		return nil
	}
	progress = s.applyResult(progress, r)
	return s.check(progress, false)
}

func (s *SearchServer) applyResult(progress *searchProgress, r JobResult) *searchProgress {
	result := r.Result
	rm := &progress.moves[r.BatchIndex]
	if rm.result == nil || !result.Unfinished {
		cp := result
		rm.result = &cp
	}
	progress.pendingCount--
	s.scheduler.NoteResult(r)
	return progress
}

func (s *SearchServer) check(progress *searchProgress, force bool) *searchProgress {
	if progress.pendingCount != 0 {
		return progress
	}

	best, shouldStop, shouldHold := s.collect(progress)

	if shouldStop || force {
		if !shouldHold || force {
			s.log.V(1).Info("search finished", "depth", progress.runningDepth, "move", best)
			s.out <- SearchOutcome{BestMove: best}
			return nil
		}
		return progress
	}

	progress.runningDepth++
	s.prepare(progress)
	return progress
}

func (s *SearchServer) collect(progress *searchProgress) (best board.Move, shouldStop, shouldHold bool) {
	var (
		haveBest   bool
		bestScore  Score
		nodes      uint64
		unfinished bool
	)

	for _, rm := range progress.moves {
		r := rm.result
		// r.Score is from the opponent's perspective: the worker
		// searched the position after rm.move was already played.
		// Flip it back to the root side's perspective before comparing.
		rootScore := r.Score.Prev()
		if !haveBest || rootScore.Compare(bestScore) > 0 {
			haveBest = true
			bestScore = rootScore
			best = rm.move
		}
		nodes += r.Nodes
		unfinished = unfinished || r.Unfinished
	}

	if !haveBest {
		return board.NoMove, true, progress.isPondering
	}

	timeFails := !progress.limits.deadline.IsZero() && time.Now().After(progress.limits.deadline)
	depthFails := progress.limits.depth >= 0 && progress.runningDepth >= progress.limits.depth
	nodesFail := progress.limits.nodes != 0 && nodes >= progress.limits.nodes
	mateFails := progress.limits.mate != 0 &&
		(bestScore.Compare(Mating(progress.limits.mate)) >= 0 ||
			bestScore.Compare(Mated(progress.limits.mate)) <= 0)
	depthLimited := progress.runningDepth == maxRunningDepth

	shouldStop = unfinished || timeFails || depthFails || nodesFail || mateFails || depthLimited
	shouldHold = shouldStop && (progress.isPondering || depthLimited)

	return best, shouldStop, shouldHold
}

func (s *SearchServer) prepare(progress *searchProgress) {
	// Rendezvous with workers that are already parked on the sleep
	// barrier from the previous batch (a no-op the very first time,
	// since the pool starts out stopped).
	s.scheduler.MarkStopped()

	progress.pendingCount = len(progress.moves)
	for i, rm := range progress.moves {
		child := progress.game.Clone()
		child.TryMakeMove(rm.move)
		s.scheduler.SubmitJob(SearchRequest{
			Game:     child,
			Depth:    progress.runningDepth,
			NodesMax: progress.limits.nodes,
			Deadline: progress.limits.deadline,
		}, i)
	}
	s.scheduler.Go()
	s.log.V(1).Info("dispatched batch", "depth", progress.runningDepth, "jobs", len(progress.moves))
}
