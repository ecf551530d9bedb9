// Command mempager drives a pager through a scripted workload and prints
// a post-run accounting summary: a small, flag-parsed entry point that
// calls log.Fatal on setup errors and reports progress with fmt.Printf,
// wired to config, a simulated MMU, and the pager.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"mempager/config"
	"mempager/mmu"
	"mempager/pager"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "mempager.yaml", "path to a mempager YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sim := mmu.NewSimulated(cfg.Pager.NFrames, cfg.Pager.PageSize, afero.NewMemMapFs())
	p := pager.New(cfg, sim, pager.WithLogger(logger), pager.WithOutput(os.Stdout))

	run, ok := traces[cfg.Demo.Trace]
	if !ok {
		log.Fatalf("unknown trace %q", cfg.Demo.Trace)
	}

	fmt.Printf("running trace %q (nframes=%d nblocks=%d page_size=%d)\n",
		cfg.Demo.Trace, cfg.Pager.NFrames, cfg.Pager.NBlocks, cfg.Pager.PageSize)

	pids, err := run(p, sim)
	if err != nil {
		log.Fatal(err)
	}

	for _, pid := range pids {
		p.Destroy(pid)
		if live := sim.LiveMappings(pid); live > 0 {
			logger.Warn("pid still has live MMU mappings after Destroy", "pid", pid, "mappings", live)
		}
	}

	printSummary(p.Stats())
}

func printSummary(s pager.Snapshot) {
	fmt.Println("--- accounting summary ---")
	fmt.Printf("faults:      %d\n", s.Faults)
	fmt.Printf("evictions:   %d\n", s.Evictions)
	fmt.Printf("disk reads:  %d\n", s.DiskReads)
	fmt.Printf("disk writes: %d\n", s.DiskWrites)
	fmt.Printf("frames:      %d/%d in use\n", s.FramesUsed, s.FramesTotal)
	fmt.Printf("blocks:      %d/%d in use\n", s.BlocksUsed, s.BlocksTotal)
	fmt.Printf("processes:   %d\n", s.Processes)
}
