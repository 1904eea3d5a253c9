// Package uci implements the Universal Chess Interface protocol on top
// of internal/engine's Game and SearchServer.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"

	"github.com/mbergstrom/zugzwang/internal/board"
	"github.com/mbergstrom/zugzwang/internal/engine"
)

// UCI implements the Universal Chess Interface protocol, translating
// the line-oriented stdin/stdout protocol into commands for a
// engine.SearchServer.
type UCI struct {
	server *engine.SearchServer
	game   *engine.Game

	in  *bufio.Scanner
	out io.Writer
	log logr.Logger

	mu        sync.Mutex
	searching bool
	queue     [][]string // deferred ucinewgame/position/go, replayed once the running search reports its outcome

	profileFile *os.File
}

// New creates a UCI handler driving a freshly constructed SearchServer
// with workerCount workers and a transposition table sized ttSizeMB
// megabytes.
func New(workerCount, ttSizeMB int, log logr.Logger) *UCI {
	return &UCI{
		server: engine.NewSearchServer(workerCount, ttSizeMB, log),
		game:   engine.NewGame(),
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
		log:    log,
	}
}

// Run reads commands from stdin until EOF or "quit", dispatching each
// to its handler.
func (u *UCI) Run() {
	for u.in.Scan() {
		line := strings.TrimSpace(u.in.Text())
		if line == "" {
			continue
		}

		trace := xxhash.Sum64String(line)
		u.log.V(1).Info("input", "trace", fmt.Sprintf("%016x", trace), "line", line)

		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Fprintln(u.out, "readyok")
		case "ucinewgame", "position", "go":
			u.dispatchOrDefer(cmd, args)
		case "stop":
			u.handleStop()
		case "ponderhit":
			u.handlePonderHit()
		case "quit":
			u.handleQuit()
			return
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Fprintln(u.out, u.game.Position().String())
		case "perft":
			u.handlePerft(args)
		}
	}

	if err := u.in.Err(); err != nil {
		u.log.Error(err, "stdin read failed")
	} else {
		u.log.Info("stdin closed, exiting")
	}
}

func (u *UCI) handleUCI() {
	fmt.Fprintln(u.out, "id name Zugzwang")
	fmt.Fprintln(u.out, "id author Zugzwang contributors")
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, "option name Hash type spin default 64 min 1 max 4096")
	fmt.Fprintln(u.out, "uciok")
}

// dispatchOrDefer runs a game-altering command (ucinewgame, position,
// go) immediately if the server is idle, or queues it to run once the
// running search reports its outcome. stop/ponderhit/isready/uci/quit
// bypass this and are serviced immediately, per the UCI command-
// ordering rules.
func (u *UCI) dispatchOrDefer(cmd string, args []string) {
	u.mu.Lock()
	if u.searching {
		u.queue = append(u.queue, append([]string{cmd}, args...))
		u.mu.Unlock()
		return
	}
	u.mu.Unlock()

	u.runGameCommand(cmd, args)
}

func (u *UCI) runGameCommand(cmd string, args []string) {
	switch cmd {
	case "ucinewgame":
		u.handleNewGame()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	}
}

// drainQueue replays commands deferred by dispatchOrDefer while a
// search was running, in arrival order. A "go" among them starts a new
// search and re-defers anything still behind it in the queue.
func (u *UCI) drainQueue() {
	u.mu.Lock()
	pending := u.queue
	u.queue = nil
	u.mu.Unlock()

	for _, line := range pending {
		u.dispatchOrDefer(line[0], line[1:])
	}
}

// handleNewGame clears the transposition table. Only ever called while
// idle, since ucinewgame is deferred by dispatchOrDefer while a search
// is running.
func (u *UCI) handleNewGame() {
	u.server.Send(engine.UciNewGameCmd())
	u.game = engine.NewGame()
}

// handlePosition parses and sets up a position. Formats:
//
//	position startpos
//	position startpos moves e2e4 e7e5
//	position fen <fen>
//	position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int
	switch args[0] {
	case "startpos":
		u.game = engine.NewGame()
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i, arg := range args[1:] {
			if arg == "moves" {
				fenEnd = i + 1
				break
			}
		}
		fenStr := strings.Join(args[1:fenEnd], " ")
		g, err := engine.NewGameFromFEN(fenStr)
		if err != nil {
			u.log.V(1).Info("rejected FEN", "fen", fenStr, "err", err)
			fmt.Fprintf(u.out, "info string invalid FEN: %v\n", err)
			return
		}
		u.game = g
		moveStart = fenEnd
	default:
		return
	}

	for i, arg := range args[moveStart:] {
		if arg == "moves" {
			moveStart += i + 1
			break
		}
	}

	for _, moveStr := range args[moveStart:] {
		m, err := board.ParseMove(moveStr, u.game.Position())
		if err != nil || !u.game.TryMakeMove(m) {
			u.log.V(1).Info("rejected move in position command", "move", moveStr)
			fmt.Fprintf(u.out, "info string invalid move: %s\n", moveStr)
			return
		}
	}
}

// goOptions holds the parsed "go" command arguments.
type goOptions struct {
	searchMoves []string
	depth       int
	nodes       uint64
	mate        uint64
	moveTime    time.Duration
	wtime, btime time.Duration
	winc, binc   time.Duration
	movesToGo   int
	infinite    bool
	ponder      bool
}

func (u *UCI) handleGo(args []string) {
	opts := parseGoOptions(args)

	params := engine.GoParams{
		WTime: opts.wtime, BTime: opts.btime,
		WInc: opts.winc, BInc: opts.binc,
		MoveTime:  opts.moveTime,
		MovesToGo: opts.movesToGo,
		Depth:     opts.depth,
		Nodes:     opts.nodes,
		Mate:      opts.mate,
		Infinite:  opts.infinite,
		Ponder:    opts.ponder,
	}

	if len(opts.searchMoves) > 0 {
		params.SearchMoves = make([]board.Move, 0, len(opts.searchMoves))
		for _, s := range opts.searchMoves {
			if m, err := board.ParseMove(s, u.game.Position()); err == nil {
				params.SearchMoves = append(params.SearchMoves, m)
			}
		}
	}

	u.mu.Lock()
	u.searching = true
	u.mu.Unlock()

	u.server.Send(engine.GoCmd(u.game.Clone(), params))

	go u.awaitOutcome()
}

func (u *UCI) awaitOutcome() {
	start := time.Now()
	outcome := <-u.server.Outcomes()

	u.mu.Lock()
	u.searching = false
	u.mu.Unlock()

	u.log.V(1).Info("search complete", "elapsed", humanize.RelTime(start, time.Now(), "ago", ""))

	if outcome.Ponder != board.NoMove {
		fmt.Fprintf(u.out, "bestmove %s ponder %s\n", outcome.BestMove.String(), outcome.Ponder.String())
	} else {
		fmt.Fprintf(u.out, "bestmove %s\n", outcome.BestMove.String())
	}

	u.drainQueue()
}

func parseGoOptions(args []string) goOptions {
	var opts goOptions

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "searchmoves":
			for i+1 < len(args) && !isGoKeyword(args[i+1]) {
				opts.searchMoves = append(opts.searchMoves, args[i+1])
				i++
			}
		case "ponder":
			opts.ponder = true
		case "depth":
			if i+1 < len(args) {
				opts.depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				opts.nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "mate":
			if i+1 < len(args) {
				opts.mate, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.moveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.infinite = true
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.wtime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.btime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "winc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.winc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.binc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				opts.movesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

func isGoKeyword(s string) bool {
	switch s {
	case "ponder", "wtime", "btime", "winc", "binc", "movestogo", "depth",
		"nodes", "mate", "movetime", "infinite":
		return true
	default:
		return false
	}
}

// handleStop cancels any running search; awaitOutcome reports bestmove
// once the server acknowledges.
func (u *UCI) handleStop() {
	if !u.isSearching() {
		return
	}
	u.server.Send(engine.StopCmd())
}

func (u *UCI) handlePonderHit() {
	if !u.isSearching() {
		return
	}
	u.server.Send(engine.PonderHitCmd())
}

func (u *UCI) isSearching() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.searching
}

func (u *UCI) handleQuit() {
	if u.isSearching() {
		u.server.Send(engine.StopCmd())
		<-u.server.Outcomes()
	}
	u.server.Quit()

	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		fmt.Fprintln(os.Stderr, "info string CPU profile saved")
	}
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "cpuprofile":
		if u.profileFile != nil {
			pprof.StopCPUProfile()
			u.profileFile.Close()
			u.profileFile = nil
		}
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string failed to create profile: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				fmt.Fprintf(os.Stderr, "info string failed to start profile: %v\n", err)
				return
			}
			u.profileFile = f
		}
	}
}

// handlePerft runs a perft node count from the current position,
// purely a debug command outside the UCI command set.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := board.Perft(u.game.Position(), depth)
	elapsed := time.Since(start)

	fmt.Fprintf(u.out, "Nodes: %s\n", humanize.Comma(int64(nodes)))
	fmt.Fprintf(u.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Fprintf(u.out, "NPS: %s\n", humanize.Comma(int64(nps)))
	}
}
