package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/config"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/forecast"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/metrics"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/store"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/output"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/validation"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	// Reports go to stdout, so logs default to stderr.
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// buildPersister returns the persister selected by the store backend and a
// function releasing its resources.
func buildPersister(ctx context.Context, conf config.StoreConfig) (store.Persister, func(), error) {
	noop := func() {}
	switch conf.Backend {
	case constants.StoreBackendFile:
		path := conf.Path
		if path == "" {
			path = constants.DefaultStorePath
		}
		return store.FilePersister{Path: path}, noop, nil
	case constants.StoreBackendRedis:
		p, err := store.NewRedisPersister(ctx, conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB, conf.Redis.Key)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", conf.Redis.Addr, err)
		}
		p.TTL = conf.Redis.TTL
		return p, func() { _ = p.Close() }, nil
	default:
		return &store.MemoryPersister{}, noop, nil
	}
}

// readPatch reads a JSON object of answer fields.
func readPatch(path string) (answers.Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file %s: %w", path, err)
	}
	var patch answers.Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}
	return patch, nil
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	envFile := flag.String("env", ".env", "path to an optional env file")
	answersFile := flag.String("answers", "", "path to a JSON file of answers to apply")
	resetGroup := flag.String("reset", "", "reset a group of answers before applying: priorYear, target, expenses, all")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, yaml")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file at %s\", \"error\": \"%v\"}\n", *envFile, err)
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx := context.Background()

	persister, closePersister, err := buildPersister(ctx, conf.Store)
	if err != nil {
		logger.Fatal("failed to set up persistence",
			zap.String("op", "main"),
			zap.String("backend", conf.Store.Backend),
			zap.Error(err),
		)
	}
	defer closePersister()

	recorder := metrics.NewRecorder()
	s := store.Open(ctx, logger,
		store.WithPersister(persister),
		store.WithMetrics(recorder),
		store.WithDebounce(conf.Recalc.Debounce, conf.Recalc.HeavyDebounce),
		store.WithPersistTimeout(conf.Recalc.PersistTimeout),
		store.WithReconciler(forecast.NewReconciler(logger, forecast.WithMaxPasses(conf.Recalc.MaxPasses))),
	)

	if *resetGroup != "" {
		group, err := answers.ParseGroup(*resetGroup)
		if err != nil {
			logger.Fatal("invalid reset group",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		s.ResetGroup(group)
	}

	if *answersFile != "" {
		patch, err := readPatch(*answersFile)
		if err != nil {
			logger.Fatal("failed to load answers",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if err := s.UpdateAnswers(patch); err != nil {
			logger.Fatal("failed to apply answers",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	if err := s.Flush(ctx); err != nil {
		logger.Error("failed to flush answers",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	report := output.BuildReport(logger, s.Answers(), conf.ThresholdOverrides())
	for _, warning := range report.Warnings {
		logger.Warn("Answers warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, report); err != nil {
		logger.Fatal("failed to write report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if conf.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(conf.Metrics.Textfile); err != nil {
			logger.Error("failed to write metrics textfile",
				zap.String("op", "main"),
				zap.String("path", conf.Metrics.Textfile),
				zap.Error(err),
			)
		}
	}
}
