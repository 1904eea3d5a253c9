package engine

import (
	"sort"
	"time"
)

// ParallelSearch is the job-dispatch layer above WorkerGroup: it
// accepts one root-move job per call to PrepareSearch, then fans them
// out to the worker pool on Go and collects their results, sorted back
// into submission order, on TryCollect/Stop.
type ParallelSearch struct {
	workers      *WorkerGroup
	jobs         chan Job
	results      chan JobResult
	collected    []JobResult
	jobsCount    int
	tt           *TranspositionTable
	workerCount  int
}

// NewParallelSearch constructs a scheduler with workerCount worker
// goroutines and a transposition table sized for ttSizeMB megabytes.
// Panics if workerCount or ttSizeMB is non-positive.
func NewParallelSearch(workerCount, ttSizeMB int) *ParallelSearch {
	if workerCount <= 0 {
		panic("engine: worker count must be at least one")
	}
	jobs := make(chan Job, 4096)
	results := make(chan JobResult, 4096)
	tt := NewTranspositionTable(ttSizeMB)
	workers := NewWorkerGroup(workerCount, jobs, results, tt)

	return &ParallelSearch{
		workers:     workers,
		jobs:        jobs,
		results:     results,
		tt:          tt,
		workerCount: workerCount,
	}
}

// IsSearching reports whether the pool is currently between Go and
// Stop.
func (s *ParallelSearch) IsSearching() bool { return s.workers.Signaler().IsRunning() }

// JobsCount returns the number of jobs submitted through PrepareSearch
// since results were last collected (TryCollect, Stop or
// StopWithDeadline).
func (s *ParallelSearch) JobsCount() int { return s.jobsCount }

// PendingCount returns how many submitted jobs have not yet completed.
func (s *ParallelSearch) PendingCount() int { return s.jobsCount - len(s.collected) }

// PrepareSearch queues one root job to search game to depth plies,
// returning the index it will be reported under. Panics if the search
// is already running.
func (s *ParallelSearch) PrepareSearch(req SearchRequest) int {
	if s.IsSearching() {
		panic("engine: search is already running")
	}
	index := s.jobsCount
	s.jobsCount++
	s.jobs <- Job{Request: req, BatchIndex: index}
	return index
}

// Go starts processing every job queued since the last Go/Stop.
// Panics if already running.
func (s *ParallelSearch) Go() {
	if s.IsSearching() {
		panic("engine: search is already running")
	}
	s.collected = make([]JobResult, 0, s.jobsCount)
	s.workers.Signaler().Go()
}

// TryCollect drains whatever results are ready without blocking. If
// every job has completed it stops the pool and returns the sorted
// results; otherwise it returns nil, false. Panics if not running.
func (s *ParallelSearch) TryCollect() ([]SearchResult, bool) {
	if !s.IsSearching() {
		panic("engine: search is paused")
	}
	s.drainNonBlocking()
	if s.PendingCount() != 0 {
		return nil, false
	}
	s.workers.Signaler().Stop()
	return s.collectResults(), true
}

func (s *ParallelSearch) drainNonBlocking() {
	for {
		select {
		case r := <-s.results:
			s.collected = append(s.collected, r)
		default:
			return
		}
	}
}

// Stop forces every pending job to finish (they observe the stop
// signal and cut their search short) and returns the sorted results.
// Panics if not running.
func (s *ParallelSearch) Stop() []SearchResult {
	if !s.IsSearching() {
		panic("engine: search is paused")
	}
	s.workers.Signaler().Stop()
	for s.PendingCount() != 0 {
		s.collected = append(s.collected, <-s.results)
	}
	return s.collectResults()
}

// StopWithDeadline behaves like Stop but gives pending jobs up to
// timeout to report in before returning whatever has arrived.
func (s *ParallelSearch) StopWithDeadline(timeout time.Duration) []SearchResult {
	if !s.IsSearching() {
		panic("engine: search is paused")
	}
	s.workers.Signaler().Stop()
	deadline := time.After(timeout)
loop:
	for s.PendingCount() != 0 {
		select {
		case r := <-s.results:
			s.collected = append(s.collected, r)
		case <-deadline:
			break loop
		}
	}
	return s.collectResults()
}

// ClearTT clears the shared transposition table.
func (s *ParallelSearch) ClearTT() { s.tt.Clear() }

// SubmitJob queues req directly under the given batch index, bypassing
// the PrepareSearch/TryCollect bookkeeping. Used by callers (such as
// SearchServer) that manage their own per-depth batch indices instead
// of a running job count.
func (s *ParallelSearch) SubmitJob(req SearchRequest, batchIndex int) {
	s.jobs <- Job{Request: req, BatchIndex: batchIndex}
}

// ResultsChan exposes the raw result channel for callers (such as
// SearchServer) that need to select over it alongside other event
// sources instead of blocking inside TryCollect/Stop.
func (s *ParallelSearch) ResultsChan() <-chan JobResult { return s.results }

// NoteResult folds a result obtained via ResultsChan into this
// scheduler's bookkeeping, as if TryCollect had drained it.
func (s *ParallelSearch) NoteResult(r JobResult) { s.collected = append(s.collected, r) }

// MarkStopped transitions the signal to Stop and waits on the sleep
// barrier until every worker has parked, like Stop, but without reading
// any results; callers collect those themselves via ResultsChan. No-op
// if the pool is already stopped.
func (s *ParallelSearch) MarkStopped() { s.workers.Signaler().Stop() }

// Quit stops the pool (if running) and terminates every worker. The
// scheduler must not be used after this.
func (s *ParallelSearch) Quit() {
	if s.IsSearching() {
		s.Stop()
	}
	s.workers.Quit()
}

func (s *ParallelSearch) collectResults() []SearchResult {
	sort.Slice(s.collected, func(i, j int) bool {
		return s.collected[i].BatchIndex < s.collected[j].BatchIndex
	})
	out := make([]SearchResult, len(s.collected))
	for i, r := range s.collected {
		out[i] = r.Result
	}
	s.collected = nil
	s.jobsCount = 0
	return out
}
