package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	"flightdelay/db"
	qhttp "flightdelay/http"
	"flightdelay/ml"
	"flightdelay/monitoring"
	"flightdelay/pipeline"
)

type Config struct {
	Data struct {
		Path   string `yaml:"path"`
		Target string `yaml:"target"`
		Watch  bool   `yaml:"watch"`
	} `yaml:"data"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port      int `yaml:"port"`
		CacheSize int `yaml:"cache_size"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

func main() {
	config, err := loadConfig("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(config.Log.Level, config.Log.File)
	defer func() {
		_ = log.Sync()
	}()

	if err := db.InitDB(config.Database.Path); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	log.Info("database initialized", zap.String("path", config.Database.Path))

	holder, err := qhttp.NewModelHolder(config.Http.CacheSize)
	if err != nil {
		log.Fatal("failed to create model holder", zap.Error(err))
	}
	stats := monitoring.NewStats()
	hub := monitoring.NewStatsHub(stats, 5*time.Second, log)
	defer hub.Stop()

	// Train once before serving begins; the holder then only ever swaps a
	// fully trained replacement in.
	if err := trainAndSwap(config, holder, log); err != nil {
		log.Fatal("bootstrap training failed", zap.Error(err))
	}

	qhttp.Configure(holder, stats, hub, log)

	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = config.Http.Port
	server := qhttp.NewServer(serverConfig, log)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if config.Data.Watch {
		watcher, err := pipeline.NewWatcher(config.Data.Path, log, func() {
			if err := trainAndSwap(config, holder, log); err != nil {
				log.Error("retrain failed, keeping previous model", zap.Error(err))
				return
			}
			stats.RecordRetrain()
		})
		if err != nil {
			log.Fatal("failed to watch dataset", zap.Error(err))
		}
		defer watcher.Close()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if err := server.Stop(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

// trainAndSwap loads the dataset, fits a fresh classifier and swaps it into
// the holder together with the operator catalog.
func trainAndSwap(config *Config, holder *qhttp.ModelHolder, log *zap.Logger) error {
	frame, err := pipeline.LoadDataset(config.Data.Path)
	if err != nil {
		return err
	}
	labels, err := ml.EnsureLabel(frame, config.Data.Target)
	if err != nil {
		return err
	}
	features, err := ml.EncodeFeatures(frame)
	if err != nil {
		return err
	}

	clf := ml.NewDelayClassifier()
	if err := clf.Fit(features, labels); err != nil {
		return err
	}
	catalog, err := pipeline.OperatorCatalog(frame)
	if err != nil {
		return err
	}

	delayed := 0
	for _, label := range labels {
		if label == 1 {
			delayed++
		}
	}
	info := qhttp.ModelInfo{
		TrainedAt:  time.Now().UTC(),
		Rows:       frame.Len(),
		DelayRatio: float64(delayed) / float64(len(labels)),
		Features:   ml.FeatureColumns(),
	}
	holder.Swap(clf, catalog, info)

	if err := db.SaveTrainingLog(db.TrainingLog{
		ModelName:  "logistic",
		Rows:       info.Rows,
		DelayRatio: info.DelayRatio,
		TrainedAt:  info.TrainedAt,
	}); err != nil {
		log.Warn("training log write failed", zap.Error(err))
	}

	log.Info("model trained",
		zap.Int("rows", info.Rows),
		zap.Float64("delay_ratio", info.DelayRatio),
		zap.Int("operators", len(catalog)))
	return nil
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setupLogger(level, file string) *zap.Logger {
	zapLevel := parseLogLevel(level)

	if file == "" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
		log, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		return log
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		writer,
		zapLevel,
	)
	return zap.New(core)
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
