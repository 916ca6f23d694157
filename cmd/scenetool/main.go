// scenetool loads or builds a scene, steps it headless for a number of frames
// and writes the result.
//
// Usage:
//
//	scenetool [options]
//
// Examples:
//
//	scenetool -demo -frames 120 -out demo.yaml
//	scenetool -in level.json -frames 1 -out level.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine"
	"github.com/Carmen-Shannon/oxy-graph/engine/config"
	"github.com/Carmen-Shannon/oxy-graph/engine/scene"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, runs the tool and writes the summary to stdout.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("scenetool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Settings file (.toml, .yaml, .json)")
	inPath := fs.String("in", "", "Scene document to load (.json, .yaml)")
	outPath := fs.String("out", "", "Where to write the scene after stepping")
	frames := fs.Int("frames", 60, "Number of frames to step")
	dt := fs.Float64("dt", 1.0/60, "Frame length in seconds")
	demo := fs.Bool("demo", false, "Build the demo scene instead of loading one")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: scenetool [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	*inPath = common.Coalesce(*inPath, cfg.Scene.Path)
	if *inPath == "" && !*demo {
		fs.Usage()
		return fmt.Errorf("one of -in, -demo or scene.path in -config is required")
	}
	if *frames < 0 {
		return fmt.Errorf("-frames must be >= 0, got %d", *frames)
	}

	sceneOpts := []scene.SceneBuilderOption{scene.WithLogger(logger)}
	if cfg.Engine.CullWorkers > 0 {
		sceneOpts = append(sceneOpts, scene.WithCullWorkers(cfg.Engine.CullWorkers))
	}
	s := scene.NewScene(sceneOpts...)
	defer s.Close()

	if *demo {
		buildDemo(s, cfg)
	} else if err := s.LoadFile(*inPath); err != nil {
		return fmt.Errorf("load %s: %w", *inPath, err)
	}

	e := engine.NewEngine(
		engine.WithScene(s),
		engine.WithLogger(logger),
		engine.WithConfig(cfg),
	)
	e.RunFrames(*frames, float32(*dt))

	printSummary(stdout, s, e.Context().Time)

	if *outPath != "" {
		if err := s.SaveFile(*outPath); err != nil {
			return fmt.Errorf("save %s: %w", *outPath, err)
		}
		logger.Info("scene written", "path", *outPath)
	}
	return nil
}

// printSummary writes node counts, camera state and the visible set.
func printSummary(w io.Writer, s scene.Scene, elapsed float64) {
	fmt.Fprintf(w, "time: %.3fs\n", elapsed)
	fmt.Fprintf(w, "nodes: %d\n", s.NodeCount())
	for _, t := range []scene.Type{scene.TypeRoot, scene.TypeCamera, scene.TypeObject, scene.TypeLight} {
		fmt.Fprintf(w, "  %-7s %d\n", strings.ToLower(t.String())+":", len(s.Nodes(t)))
	}

	cam := s.DrawCamera()
	if cam == nil {
		fmt.Fprintln(w, "draw camera: none")
		return
	}
	p := cam.Position()
	f := cam.Forward()
	name := "?"
	if n := s.CameraNode(cam); n != nil {
		name = n.Name()
	}
	fmt.Fprintf(w, "draw camera: %s at (%.2f, %.2f, %.2f) facing (%.2f, %.2f, %.2f)\n",
		name, p[0], p[1], p[2], f[0], f[1], f[2])

	visible := s.Cull(cam)
	names := make([]string, 0, len(visible))
	for _, n := range visible {
		names = append(names, n.Name())
	}
	fmt.Fprintf(w, "visible: %d [%s]\n", len(visible), strings.Join(names, " "))
}
