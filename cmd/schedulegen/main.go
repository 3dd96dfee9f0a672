// Command schedulegen runs one scheduling request from a JSON scenario
// file and writes the resulting timetable to stdout or a file, without
// starting any HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/schedulengine/internal/runqueue"
	"github.com/noah-isme/schedulengine/internal/scheduler"
	"github.com/noah-isme/schedulengine/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "schedulegen:", err)
		os.Exit(1)
	}
}

func run() error {
	inPath := flag.String("in", "", "path to a JSON scenario file (teachers/classes/config)")
	outPath := flag.String("out", "", "path to write the result to (default stdout)")
	seed := flag.Int64("seed", 0, "override the scenario's seed (0 keeps the scenario's own seed; the engine derives one if that is also 0)")
	flag.Parse()

	if *inPath == "" {
		return fmt.Errorf("-in is required")
	}

	raw, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("reading scenario: %w", err)
	}

	var req transport.GenerateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("parsing scenario: %w", err)
	}

	if *seed != 0 {
		if req.Config == nil {
			req.Config = &transport.SchedulerConfigInput{}
		}
		req.Config.Seed = *seed
	}

	classes, err := req.ToDomain()
	if err != nil {
		return fmt.Errorf("resolving scenario: %w", err)
	}

	engineCfg := scheduler.Config{}
	if req.Config != nil {
		engineCfg = req.Config.ToConfig()
	}

	logger := zap.NewNop()
	queue := runqueue.New(1, 0, logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	handle, err := queue.Submit(ctx, runqueue.Request{Classes: classes, Config: engineCfg})
	if err != nil {
		return fmt.Errorf("submitting run: %w", err)
	}

	result, err := handle.Wait(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(transport.FromResult(result))
}
