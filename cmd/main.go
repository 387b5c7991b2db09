package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/question-bank/api"
	"github.com/fyerfyer/question-bank/api/handler"
	"github.com/fyerfyer/question-bank/api/middleware"
	qbconfig "github.com/fyerfyer/question-bank/config"
	"github.com/fyerfyer/question-bank/internal/cache"
	"github.com/fyerfyer/question-bank/internal/database"
	"github.com/fyerfyer/question-bank/internal/document"
	"github.com/fyerfyer/question-bank/internal/export"
	"github.com/fyerfyer/question-bank/internal/extractor"
	"github.com/fyerfyer/question-bank/internal/repository"
	"github.com/fyerfyer/question-bank/internal/services"
	"github.com/fyerfyer/question-bank/pkg/storage"
	"github.com/fyerfyer/question-bank/pkg/taskqueue"
)

// 命令行选项
type options struct {
	Input      string // 输入题库文件
	Output     string // 输出JSON路径
	Peek       int    // 只打印前n页文本
	Serve      bool   // 启动HTTP服务
	Worker     bool   // 只启动任务工作者
	ConfigFile string // 配置文件路径
	LogLevel   string // 日志级别，覆盖配置文件
}

func main() {
	// 加载.env（如果存在）
	_ = godotenv.Load()

	opts := parseFlags()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run 根据选项选择运行模式
func run(opts options) error {
	switch {
	case opts.Serve:
		cfg, logger, err := setup(opts, "info")
		if err != nil {
			return err
		}
		return runServer(cfg, logger)
	case opts.Worker:
		cfg, logger, err := setup(opts, "info")
		if err != nil {
			return err
		}
		return runWorker(cfg, logger)
	case opts.Input != "" && opts.Peek > 0:
		return runPeek(opts.Input, opts.Peek)
	case opts.Input != "":
		// 命令行抽取默认只输出警告，避免干扰结果输出
		_, logger, err := setup(opts, "warn")
		if err != nil {
			return err
		}
		return runExtract(opts, logger)
	default:
		flag.Usage()
		return errors.New("one of -input, -serve or -worker is required")
	}
}

// parseFlags 解析命令行参数
func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.Input, "input", "", "Question bank file to extract (.pdf, .md, .txt)")
	flag.StringVar(&opts.Output, "output", "", "Output JSON path (default: questions.json next to the input)")
	flag.IntVar(&opts.Peek, "peek", 0, "Print the text of the first n pages of -input and exit")
	flag.BoolVar(&opts.Serve, "serve", false, "Run the HTTP API")
	flag.BoolVar(&opts.Worker, "worker", false, "Run the import task worker only")
	flag.StringVar(&opts.ConfigFile, "config", "", "Path to config file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	flag.Parse()
	return opts
}

// setup 加载配置并初始化日志
func setup(opts options, defaultLevel string) (*qbconfig.Config, *logrus.Logger, error) {
	var cfg *qbconfig.Config
	var err error
	if opts.ConfigFile != "" {
		cfg, err = qbconfig.Load(opts.ConfigFile)
	} else {
		cfg, err = qbconfig.Default()
		if err == nil && !opts.Serve && !opts.Worker {
			cfg.Log.Level = defaultLevel
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger := middleware.ConfigureLogger(middleware.LogOptions{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	return cfg, logger, nil
}

// runPeek 打印前n页的原始文本
func runPeek(input string, n int) error {
	pages, err := document.Peek(input, n)
	if err != nil {
		return err
	}

	for i, page := range pages {
		fmt.Printf("--- Page %d ---\n", i+1)
		for _, line := range page {
			fmt.Println(line)
		}
		fmt.Println()
	}
	return nil
}

// runExtract 抽取单个文件并写出JSON
func runExtract(opts options, logger *logrus.Logger) error {
	records, err := services.ExtractFile(opts.Input, extractor.New(extractor.WithLogger(logger)))
	if err != nil {
		return err
	}

	output := opts.Output
	if output == "" {
		output = export.DefaultOutputPath(opts.Input)
	}
	if err := export.WriteFile(output, records); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"input":  opts.Input,
		"output": output,
	}).Debug("Export written")
	fmt.Printf("Extracted %d questions.\n", len(records))
	return nil
}

// buildImportService 初始化数据库、存储、缓存和队列并创建导入服务
// 返回的清理函数关闭队列和数据库连接
func buildImportService(cfg *qbconfig.Config, logger *logrus.Logger) (*services.ImportService, taskqueue.Queue, func(), error) {
	if err := setupDatabase(cfg, logger); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	fileStorage, err := setupStorage(cfg)
	if err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	opts := []services.ImportOption{
		services.WithLogger(logger),
		services.WithExportIndent(cfg.Extractor.ExportIndent),
		services.WithTimeout(time.Duration(cfg.Extractor.ProcessTimeout) * time.Second),
	}

	if cfg.Cache.Enable {
		cacheService, err := setupCache(cfg)
		if err != nil {
			database.Close()
			return nil, nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		opts = append(opts, services.WithCache(cacheService, time.Duration(cfg.Cache.TTL)*time.Second))
	}

	var queue taskqueue.Queue
	if cfg.Queue.Enable {
		queue, err = setupTaskQueue(cfg, logger)
		if err != nil {
			database.Close()
			return nil, nil, nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		opts = append(opts, services.WithTaskQueue(queue))
		logger.Info("Imports will be processed by the task queue")
	}

	importService := services.NewImportService(
		fileStorage,
		repository.NewImportRepository(),
		repository.NewQuestionRepository(),
		opts...,
	)

	cleanup := func() {
		if queue != nil {
			queue.Close()
		}
		database.Close()
	}
	return importService, queue, cleanup, nil
}

// runServer 启动HTTP服务，启用队列时同时启动工作者
func runServer(cfg *qbconfig.Config, logger *logrus.Logger) error {
	gin.SetMode(cfg.Server.Mode)
	logger.Info("Starting question bank service...")

	importService, queue, cleanup, err := buildImportService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := handler.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	handlers := api.Handlers{
		Extract:  handler.NewExtractHandler(extractor.New(extractor.WithLogger(logger))),
		Import:   handler.NewImportHandler(importService, handler.WithMaxUploadSize(int64(cfg.Server.MaxUploadMB)<<20)),
		Question: handler.NewQuestionHandler(importService),
	}

	if queue != nil {
		handlers.Task = handler.NewTaskHandler(queue)

		worker, err := startWorker(cfg, queue, importService)
		if err != nil {
			return err
		}
		defer worker.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.SetupRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	waitForSignal()
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

// runWorker 只运行任务工作者
func runWorker(cfg *qbconfig.Config, logger *logrus.Logger) error {
	if !cfg.Queue.Enable {
		return errors.New("worker mode requires queue.enable=true")
	}

	importService, queue, cleanup, err := buildImportService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	worker, err := startWorker(cfg, queue, importService)
	if err != nil {
		return err
	}
	logger.Info("Worker started")

	waitForSignal()
	logger.Info("Shutting down worker...")
	worker.Stop()
	return nil
}

// startWorker 创建工作者并注册导入任务处理器
func startWorker(cfg *qbconfig.Config, queue taskqueue.Queue, importService *services.ImportService) (taskqueue.Worker, error) {
	worker, err := taskqueue.NewWorker(queue, queueConfig(cfg, nil))
	if err != nil {
		return nil, err
	}

	importService.RegisterHandlers(worker)
	if err := worker.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return worker, nil
}

func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// setupStorage 设置文件存储服务
func setupStorage(cfg *qbconfig.Config) (storage.Storage, error) {
	return storage.New(storage.Config{
		Type: cfg.Storage.Type,
		Local: storage.LocalConfig{
			Path: cfg.Storage.Path,
		},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		},
	})
}

// setupCache 设置缓存服务
func setupCache(cfg *qbconfig.Config) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Type = cfg.Cache.Type
	cacheConfig.DefaultTTL = time.Duration(cfg.Cache.TTL) * time.Second
	cacheConfig.Namespace = cfg.Cache.Namespace

	if cfg.Cache.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Cache.Address
		cacheConfig.RedisPassword = cfg.Cache.Password
		cacheConfig.RedisDB = cfg.Cache.DB
	}

	return cache.NewCache(cacheConfig)
}

// setupDatabase 设置数据库
func setupDatabase(cfg *qbconfig.Config, logger *logrus.Logger) error {
	dbConfig := database.DefaultConfig()
	dbConfig.Type = cfg.Database.Type
	dbConfig.DSN = cfg.Database.DSN

	return database.Setup(dbConfig, logger)
}

// queueConfig 转换任务队列配置
func queueConfig(cfg *qbconfig.Config, logger *logrus.Logger) *taskqueue.Config {
	qc := taskqueue.DefaultConfig()
	qc.RedisAddr = cfg.Queue.RedisAddr
	qc.RedisPassword = cfg.Queue.RedisPassword
	qc.RedisDB = cfg.Queue.RedisDB
	qc.Concurrency = cfg.Queue.Concurrency
	qc.RetryLimit = cfg.Queue.RetryLimit
	qc.RetryDelay = time.Duration(cfg.Queue.RetryDelay) * time.Second
	qc.TaskTimeout = time.Duration(cfg.Queue.TaskTimeout) * time.Second
	qc.Logger = logger
	return qc
}

// setupTaskQueue 设置任务队列
func setupTaskQueue(cfg *qbconfig.Config, logger *logrus.Logger) (taskqueue.Queue, error) {
	logger.WithFields(logrus.Fields{
		"type":        cfg.Queue.Type,
		"redis_addr":  cfg.Queue.RedisAddr,
		"concurrency": cfg.Queue.Concurrency,
		"retry_limit": cfg.Queue.RetryLimit,
	}).Info("Setting up task queue")

	return taskqueue.NewQueue(cfg.Queue.Type, queueConfig(cfg, logger))
}
