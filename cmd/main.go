package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gunther-schulz/geoforge/engine"
	_ "github.com/gunther-schulz/geoforge/exporters"
	"github.com/gunther-schulz/geoforge/frontends"
	_ "github.com/gunther-schulz/geoforge/frontends/yamlcfg"
	"github.com/gunther-schulz/geoforge/internal/types"
	_ "github.com/gunther-schulz/geoforge/loaders"
	"github.com/gunther-schulz/geoforge/operations"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geoforge",
		Short: "Declarative geometry layer pipeline",
		Long: `Geoforge resolves a declarative configuration of geometry layers into
final geometry. Layers derive from other layers through chains of
operations (buffer, overlay, dissolve, cleanup and more), ordered
automatically by their dependencies.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newOpsCommand())

	return cmd
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if os.Getenv("GEOFORGE_LOG_FORMAT") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level := os.Getenv("GEOFORGE_LOG_LEVEL")
	if parsed, err := logrus.ParseLevel(level); level != "" && err == nil {
		log.SetLevel(parsed)
	} else if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

func newRunCommand() *cobra.Command {
	var (
		frontend  string
		targetCRS string
		exporter  string
		outputDir string
		layer     string
		compress  bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "run [config]",
		Short: "Resolve all layers in a pipeline configuration",
		Long: `Parse the configuration, load seed geometry, resolve every layer in
dependency order and export the finished layers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)

			crs, err := parseCRSFlag(targetCRS)
			if err != nil {
				return err
			}
			config := &types.PipelineConfig{
				ConfigPath: args[0],
				Frontend:   frontend,
				TargetCRS:  crs,
				Exporter:   exporter,
				OutputDir:  outputDir,
				Compress:   compress,
				Verbose:    verbose,
				Layer:      layer,
			}

			pipeline := engine.NewPipeline(config, log)
			result, err := pipeline.Run()
			if err != nil {
				return fmt.Errorf("run failed: %v", err)
			}

			fmt.Printf("Resolved %d of %d layers\n", result.Resolved, result.Layers)
			if result.Deferred > 0 {
				fmt.Printf("Deferred: %d layer(s) waiting on documents: %s\n",
					result.Deferred, strings.Join(pipeline.Deferred(), ", "))
			}
			for _, w := range result.Warnings {
				fmt.Printf("Warning: %s\n", w)
			}
			for _, path := range result.Exported {
				fmt.Printf("Exported: %s\n", path)
			}
			fmt.Printf("Duration: %s\n", result.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&frontend, "frontend", "yaml", "Configuration frontend")
	cmd.Flags().StringVar(&targetCRS, "crs", "", "Target CRS (EPSG:4326 or EPSG:3857, overrides config)")
	cmd.Flags().StringVarP(&exporter, "exporter", "e", "geojson", "Exporter for finished layers")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory")
	cmd.Flags().StringVar(&layer, "layer", "", "Resolve only this layer and its dependencies")
	cmd.Flags().BoolVar(&compress, "compress", false, "Gzip exported files")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func newValidateCommand() *cobra.Command {
	var frontend string

	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Parse and validate a configuration without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read config: %v", err)
			}
			f, err := frontends.GetFrontend(frontend)
			if err != nil {
				return err
			}
			spec, err := f.Parse(data, &types.PipelineConfig{ConfigPath: args[0]})
			if err != nil {
				return fmt.Errorf("invalid configuration: %v", err)
			}

			ops := 0
			for _, layer := range spec.Layers {
				ops += countOps(layer.Operations)
			}
			fmt.Printf("Configuration valid: %d layer(s), %d operation(s)\n", len(spec.Layers), ops)
			return nil
		},
	}

	cmd.Flags().StringVar(&frontend, "frontend", "yaml", "Configuration frontend")

	return cmd
}

func newOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the registered operation types",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range operations.Registered() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func countOps(ops []*types.OperationSpec) int {
	n := len(ops)
	for _, op := range ops {
		n += countOps(op.Nested)
	}
	return n
}

func parseCRSFlag(s string) (types.CRS, error) {
	if s == "" {
		return "", nil
	}
	crs, err := types.ParseCRS(s)
	if err != nil {
		return "", fmt.Errorf("invalid --crs: %v", err)
	}
	return crs, nil
}
