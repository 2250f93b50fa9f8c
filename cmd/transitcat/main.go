// Command transitcat answers a request document in one shot: it reads base
// requests and stat requests from stdin (or a file) and writes one response
// per stat request to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/samirrijal/transitcat/internal/adapters/document"
	"github.com/samirrijal/transitcat/internal/bootstrap"
	"github.com/samirrijal/transitcat/internal/core/routing"
	"github.com/samirrijal/transitcat/internal/core/snapshot"
	"github.com/samirrijal/transitcat/internal/core/usecases"
	"github.com/samirrijal/transitcat/internal/pkg/config"
	"github.com/samirrijal/transitcat/internal/pkg/logging"
)

func main() {
	format := flag.String("format", "", "input format: json or yaml (default: from file extension, else json)")
	engine := flag.String("engine", "", "routing engine: dijkstra or ch (default: from config)")
	strict := flag.Bool("strict-distances", false, "reject routes over stop pairs without a road distance")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: transitcat [flags] [document]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load("transitcat-cli")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// stdout carries the responses, so logs go to stderr.
	logging.SetupWriter(os.Stderr, cfg.Log.Level, "text")

	path := flag.Arg(0)
	f := document.FormatJSON
	switch {
	case *format != "":
		if f, err = document.ParseFormat(*format); err != nil {
			log.Fatal(err)
		}
	case path != "" && path != "-":
		f = document.FormatFromPath(path)
	}

	if err := runPath(context.Background(), cfg, path, os.Stdout, f, *engine, *strict); err != nil {
		log.Fatal(err)
	}
}

// runPath answers the document at path, or stdin when path is empty or "-".
// The file is closed before runPath returns.
func runPath(ctx context.Context, cfg *config.Config, path string, out io.Writer, f document.Format, engineName string, strict bool) error {
	if path == "" || path == "-" {
		return run(ctx, cfg, os.Stdin, out, f, engineName, strict)
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return run(ctx, cfg, file, out, f, engineName, strict)
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, f document.Format, engineName string, strict bool) error {
	req, err := document.Decode(in, f)
	if err != nil {
		return err
	}
	doc, err := req.Network()
	if err != nil {
		return err
	}

	opts, err := bootstrap.Options(cfg)
	if err != nil {
		return err
	}
	if engineName != "" {
		if opts.Engine, err = routing.ParseEngine(engineName); err != nil {
			return err
		}
	}
	opts.StrictDistances = opts.StrictDistances || strict

	snap, err := snapshot.Build(ctx, doc, opts)
	if err != nil {
		return err
	}

	network := usecases.NewNetworkService(snap, nil, 0)
	responses := usecases.NewRequestService(network, req.Render()).Process(ctx, req.StatRequests)
	return document.EncodeResponses(out, responses)
}
