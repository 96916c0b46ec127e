// Package main provides the entry point for latentpca, a command-line tool that
// finds how many principal components of a set of protein embeddings explain a
// given share of their variance, shows the cumulative variance curve, and writes
// the embeddings reduced to that many components next to the input table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alDuncanson/latentpca/config"
	"github.com/alDuncanson/latentpca/huggingface"
	"github.com/alDuncanson/latentpca/logging"
	"github.com/alDuncanson/latentpca/pipeline"
	"github.com/alDuncanson/latentpca/qdrant"

	"github.com/joho/godotenv"
)

// version is set at build time via ldflags, defaults to "dev" for local builds
var version = "dev"

func main() {
	// Parse command-line flags; anything left unset falls back to the config file
	showVersionFlag := flag.Bool("version", false, "print version and exit")
	configPathFlag := flag.String("config", "", "path to a YAML config file (default ./"+config.DefaultPath+" if present)")
	inputPathFlag := flag.String("input", "", "input table (.json, .jsonl, .csv, optionally .zst or .lz4)")
	outputPathFlag := flag.String("output", "", "output table; the format follows the extension")
	thresholdFlag := flag.Float64("threshold", 0, "fraction of variance to keep, in (0, 1]")
	plotPathFlag := flag.String("plot", "", "also save the variance curve to this image file")
	reportPathFlag := flag.String("report", "", "write a JSON run report to this file")
	headlessFlag := flag.Bool("headless", false, "skip the interactive terminal view")
	writeConfigFlag := flag.String("write-config", "", "write the effective configuration to this YAML file and exit")
	flag.Parse()

	// Handle version flag: print version and exit early
	if *showVersionFlag {
		fmt.Println(version)
		return
	}

	// A missing .env file is normal
	_ = godotenv.Load()

	appConfig, configPath, err := config.LoadDefault(*configPathFlag)
	if err != nil {
		fail("config", err)
	}
	applyFlags(appConfig, *inputPathFlag, *outputPathFlag, *thresholdFlag, *plotPathFlag, *reportPathFlag, *headlessFlag)
	if err := appConfig.Validate(); err != nil {
		fail("config", err)
	}

	// Snapshot the merged file, environment and flag settings for later runs
	if *writeConfigFlag != "" {
		if err := config.Save(*writeConfigFlag, appConfig); err != nil {
			fail("config", err)
		}
		fmt.Printf("Configuration written to %s\n", *writeConfigFlag)
		return
	}

	logger, err := logging.New(os.Stderr, appConfig.Log.Format, appConfig.Log.Level)
	if err != nil {
		fail("config", err)
	}
	if configPath != "" {
		logger.Debug("config loaded", "path", configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	options := pipeline.Options{
		OutputPath:      appConfig.Output,
		EmbeddingColumn: appConfig.EmbeddingColumn,
		LabelColumn:     appConfig.LabelColumn,
		ComponentPrefix: appConfig.ComponentPrefix,
		Threshold:       appConfig.Threshold,
		ReportPath:      appConfig.Report,
		Stdout:          os.Stdout,
		Logger:          logger,
	}

	// Pick the input source
	switch appConfig.Source.Type {
	case config.SourceQdrant:
		qdrantConfig := appConfig.Source.Qdrant
		connectContext, cancel := context.WithTimeout(ctx, time.Duration(qdrantConfig.TimeoutSecs)*time.Second)
		qdrantClient, err := qdrant.NewClient(connectContext, qdrantConfig.Address, qdrantConfig.Collection, qdrant.Options{
			APIKey:     qdrantConfig.APIKey,
			UseTLS:     qdrantConfig.TLS,
			VectorName: qdrantConfig.VectorName,
			PageSize:   qdrantConfig.PageSize,
		})
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Make sure Qdrant is running: docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant")
			fail(pipeline.StageLoad, err)
		}
		defer qdrantClient.Close()

		options.Source = qdrantClient
		if qdrantConfig.WriteBack {
			options.ComponentWriter = qdrantClient
		}
	case config.SourceHuggingFace:
		huggingFaceConfig := appConfig.Source.HuggingFace
		options.Source = pipeline.HuggingFaceSource{
			Client:  huggingface.NewClient(huggingFaceConfig.BaseURL, huggingFaceConfig.Token),
			Dataset: huggingFaceConfig.Dataset,
			Config:  huggingFaceConfig.Config,
			Split:   huggingFaceConfig.Split,
			MaxRows: huggingFaceConfig.MaxRows,
		}
	default:
		options.Source = pipeline.FileSource{Path: appConfig.Input}
	}

	// The image is written before the interactive view blocks
	if appConfig.Plot != "" {
		options.Visualizers = append(options.Visualizers, pipeline.FigureVisualizer{Path: appConfig.Plot})
	}
	if appConfig.Display == config.DisplayTUI {
		options.Visualizers = append(options.Visualizers, pipeline.TerminalVisualizer{Version: version})
	}

	if _, err := pipeline.Run(ctx, options); err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			fail(stageErr.Stage, stageErr.Err)
		}
		fail("run", err)
	}
}

// applyFlags overrides config values with the flags the user actually set.
func applyFlags(appConfig *config.Config, inputPath, outputPath string, threshold float64, plotPath, reportPath string, headless bool) {
	if inputPath != "" {
		appConfig.Input = inputPath
		appConfig.Source.Type = config.SourceFile
	}
	if outputPath != "" {
		appConfig.Output = outputPath
	}
	if threshold != 0 {
		appConfig.Threshold = threshold
	}
	if plotPath != "" {
		appConfig.Plot = plotPath
	}
	if reportPath != "" {
		appConfig.Report = reportPath
	}
	if headless {
		appConfig.Display = config.DisplayNone
	}
}

func fail(stage string, err error) {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", stage, err)
	os.Exit(1)
}
