// Command zugzwang-uci is a UCI chess engine front end.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/go-logr/stdr"

	"github.com/mbergstrom/zugzwang/internal/uci"
)

var (
	workers    = flag.Int("workers", 4, "number of search worker goroutines")
	hashMB     = flag.Int("hash-mb", 64, "transposition table size in megabytes")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	verbosity  = flag.Int("v", 0, "log verbosity (0=info, 1=debug)")
)

func main() {
	flag.Parse()

	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))
	stdr.SetVerbosity(*verbosity)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logger.Error(err, "could not create CPU profile")
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error(err, "could not start CPU profile")
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	protocol := uci.New(*workers, *hashMB, logger)
	protocol.Run()
}
