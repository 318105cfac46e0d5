package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandrockwiki/census/pkg/census"
	"github.com/sandrockwiki/census/pkg/diagnostics"
	"github.com/sandrockwiki/census/pkg/itemsource"
	"github.com/sandrockwiki/census/pkg/luaformat"
	"github.com/sandrockwiki/census/pkg/preproc"
	"github.com/sandrockwiki/census/pkg/yamlformat"
)

const version = "1.0.0"

var (
	configPath = flag.String("config", "", "Path to YAML configuration file (required)")
	outputDir  = flag.String("output", "", "Output directory override (default: the config's output_dir)")
	format     = flag.String("format", "yaml", "Export format: yaml, lua, or all")
	purge      = flag.Bool("purge", false, "Invalidate the preprocessor cache before running")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("census version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config flag is required")
		printUsage()
		os.Exit(1)
	}

	validFormats := map[string]bool{"yaml": true, "lua": true, "all": true}
	if !validFormats[*format] {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, must be one of: yaml, lua, all\n", *format)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	entry := logrus.NewEntry(logger)

	entry.Infof("census: loading configuration from %s", *configPath)
	cfg, err := census.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dest := cfg.OutputDir
	if *outputDir != "" {
		dest = *outputDir
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if *purge {
		entry.Infof("census: purging preprocessor cache at %s", cfg.CacheRoot)
		if err := preproc.NewCache(cfg.CacheRoot).Purge(); err != nil {
			return fmt.Errorf("failed to purge preprocessor cache: %w", err)
		}
	}

	driver := census.NewDriver(cfg).WithLogger(entry)

	start := time.Now()
	result, _, namer, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}
	elapsed := time.Since(start)
	entry.Infof("census: resolution completed in %v", elapsed)

	entries, err := census.Categorize(result, namer)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if *format == "yaml" || *format == "all" {
		if err := writeYAML(entries, dest); err != nil {
			return err
		}
	}
	if *format == "lua" || *format == "all" {
		if err := writeLua(entries, dest); err != nil {
			return err
		}
	}

	if err := writeDiagnostics(result, dest); err != nil {
		entry.Warnf("census: failed to write diagnostics graph: %v", err)
	}

	fmt.Printf("Resolved %d items in %v\n", len(entries), elapsed)
	return nil
}

func writeYAML(entries []census.ItemEntry, dest string) error {
	data, err := yamlformat.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	path := filepath.Join(dest, "item_sources.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if *verbose {
		fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
	}
	return nil
}

func writeLua(entries []census.ItemEntry, dest string) error {
	data, err := luaformat.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal lua: %w", err)
	}
	path := filepath.Join(dest, "item_sources.lua")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if *verbose {
		fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
	}
	return nil
}

// writeDiagnostics renders the fixpoint dependency graph alongside the
// formatted output. It is a debugging aid for resolver authors, never a
// required artifact, so a failure here is logged and does not fail the run.
func writeDiagnostics(result *itemsource.Result, dest string) error {
	data, err := diagnostics.RenderFixpointGraph(result, diagnostics.DefaultGraphOptions())
	if err != nil {
		return fmt.Errorf("failed to render fixpoint graph: %w", err)
	}
	path := filepath.Join(dest, "fixpoint_graph.svg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if *verbose {
		fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
	}
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage: census -config <config.yaml> [options]")
	fmt.Fprintln(os.Stderr, "\nRun 'census -help' for detailed help")
}

func printHelp() {
	fmt.Printf("census version %s\n\n", version)
	fmt.Println("A command-line tool that resolves where every item in the game can be obtained.")
	fmt.Println("\nUsage:")
	fmt.Println("  census -config <config.yaml> [options]")
	fmt.Println("\nRequired Flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML configuration file")
	fmt.Println("\nOptional Flags:")
	fmt.Println("  -output string")
	fmt.Println("        Output directory override (default: the config's output_dir)")
	fmt.Println("  -format string")
	fmt.Println("        Export format: yaml, lua, or all (default: yaml)")
	fmt.Println("  -purge")
	fmt.Println("        Invalidate the preprocessor cache before running")
	fmt.Println("  -verbose")
	fmt.Println("        Enable verbose output")
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  census -config census.yaml")
	fmt.Println("  census -config census.yaml -format all -output ./out")
	fmt.Println("  census -config census.yaml -purge -verbose")
}
