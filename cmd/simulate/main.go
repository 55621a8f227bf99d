package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/engine"
)

// Offline generator run: evaluates a fixed number of ticks against a seeded
// engine and writes one JSON record per line. Useful for inspecting the
// generator's behavior without a database or HTTP surface.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ticks := flag.Int("ticks", 30, "number of ticks to evaluate")
	interval := flag.Duration("interval", 2*time.Second, "simulated time between ticks")
	seed := flag.Int64("seed", 1, "random seed (0 = wall clock)")
	predictive := flag.Bool("predictive", true, "enable predictive escalation")
	exposePredictive := flag.Bool("expose-predictive", false, "include predictive fields in output")
	flag.Parse()

	eng := engine.New(engine.Config{
		Seed:             *seed,
		Predictive:       *predictive,
		ExposePredictive: *exposePredictive,
	})

	enc := json.NewEncoder(os.Stdout)
	now := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < *ticks; i++ {
		batch := eng.Tick(now)
		for _, rec := range batch {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		now = now.Add(*interval)
	}

	return nil
}
