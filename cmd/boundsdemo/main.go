package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ScottBrooks/superbounds"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:               "boundsdemo",
		Short:             "Brute force parallel bounds queries over a field of random cubes",
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run query cycles in a world loop and print a summary",
		RunE:  runDemo,
	}
	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Place the cubes and run a single point, box and ray query",
		RunE:  runQuery,
	}

	configPath string
	overrides  superbounds.Config
	cfg        superbounds.Config

	queryPoint  []float32
	queryOrigin []float32
	queryDir    []float32
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.IntVar(&overrides.ObjectCount, "objects", 0, "number of cubes to place")
	pf.Int64Var(&overrides.Seed, "seed", 0, "random seed, 0 picks one from the clock")
	pf.IntVar(&overrides.BatchSize, "batch", 0, "indices per batch")
	pf.IntVar(&overrides.Workers, "workers", 0, "goroutines per query, 0 uses GOMAXPROCS")
	pf.IntVar(&overrides.HitCapacity, "hits", 0, "ray hit list capacity")
	pf.StringVar(&overrides.MatchPolicy, "policy", "", "match policy: last-write or lowest-index")
	pf.StringVar(&overrides.LogLevel, "log-level", "", "log level")

	runCmd.Flags().IntVar(&overrides.Cycles, "cycles", 0, "world updates to run")
	runCmd.Flags().IntVar(&overrides.FPS, "fps", 0, "updates per second, 0 runs unpaced")
	runCmd.Flags().StringVar(&overrides.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	queryCmd.Flags().Float32SliceVar(&queryPoint, "point", nil, "query point x,y,z (random when omitted)")
	queryCmd.Flags().Float32SliceVar(&queryOrigin, "origin", nil, "ray origin x,y,z")
	queryCmd.Flags().Float32SliceVar(&queryDir, "dir", nil, "ray direction x,y,z")

	rootCmd.AddCommand(runCmd, queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = superbounds.LoadConfig(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("objects") {
		cfg.ObjectCount = overrides.ObjectCount
	}
	if flags.Changed("seed") {
		cfg.Seed = overrides.Seed
	}
	if flags.Changed("batch") {
		cfg.BatchSize = overrides.BatchSize
	}
	if flags.Changed("workers") {
		cfg.Workers = overrides.Workers
	}
	if flags.Changed("hits") {
		cfg.HitCapacity = overrides.HitCapacity
	}
	if flags.Changed("policy") {
		cfg.MatchPolicy = overrides.MatchPolicy
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = overrides.LogLevel
	}
	if flags.Changed("cycles") {
		cfg.Cycles = overrides.Cycles
	}
	if flags.Changed("fps") {
		cfg.FPS = overrides.FPS
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = overrides.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	log.SetOutput(colorable.NewColorableStdout())
	log.SetFormatter(&log.TextFormatter{
		ForceColors:   isatty.IsTerminal(os.Stdout.Fd()),
		FullTimestamp: true,
	})
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	scene, err := superbounds.NewDemoScene(cfg, reg)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		log.Printf("Serving metrics on %s", cfg.MetricsAddr)
	}

	summary, runErr := scene.Run(ctx)
	if err := scene.Close(); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	log.WithFields(log.Fields{
		"cycles":        summary.Cycles,
		"ray_hits_mean": fmt.Sprintf("%.2f", summary.MeanRayHits),
		"ray_hits_sd":   fmt.Sprintf("%.2f", summary.StdDevRayHits),
		"ray_hits_max":  summary.MaxRayHits,
		"point_rate":    fmt.Sprintf("%.3f", summary.PointMatchRate),
		"box_rate":      fmt.Sprintf("%.3f", summary.BoxMatchRate),
		"truncated":     summary.Truncated,
		"latency_mean":  time.Duration(summary.MeanLatency * float64(time.Second)),
	}).Info("Run complete")
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	boxes := superbounds.PlaceRandomCubes(rng, cfg.ObjectCount, cfg.PlacementRadius)
	engine := superbounds.NewQueryEngine(boxes, cfg.EngineOptions()...)
	defer engine.Release()

	in := superbounds.NewRandomInputs(rng, cfg.QueryRadius, cfg.BoxSize()).Next()
	if len(queryPoint) > 0 {
		pt, err := vec3Flag("point", queryPoint)
		if err != nil {
			return err
		}
		in.Point = pt
		in.Box = superbounds.NewBoundingBox(pt, cfg.BoxSize())
	}
	if len(queryOrigin) > 0 || len(queryDir) > 0 {
		origin, err := vec3Flag("origin", queryOrigin)
		if err != nil {
			return err
		}
		dir, err := vec3Flag("dir", queryDir)
		if err != nil {
			return err
		}
		in.Ray = superbounds.NewRay(origin, dir)
	}

	l := log.WithField("seed", seed)
	if b, ok := engine.TestPoint(in.Point); ok {
		l.Infof("point %v is in Bounds: %s", in.Point, b)
	} else {
		l.Infof("point %v is not in any bounds", in.Point)
	}
	if b, ok := engine.TestBox(in.Box); ok {
		l.Infof("%s intersects with: %s", in.Box, b)
	} else {
		l.Infof("%s intersects nothing", in.Box)
	}

	flags := engine.TestRay(in.Ray)
	hits := engine.CompactRayHits(flags, cfg.HitCapacity)
	l.Infof("ray %s hits %d bounds, listing %d", in.Ray, flags.Count(), hits.Len())
	for i, b := range hits.Items() {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i, b)
	}
	return nil
}

func vec3Flag(name string, v []float32) (mgl32.Vec3, error) {
	if len(v) == 0 {
		return mgl32.Vec3{}, nil
	}
	if len(v) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("--%s wants 3 components, got %d", name, len(v))
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}
