package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/bytecv/config"
	"github.com/ByLCY/bytecv/export"
	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/logging"
	"github.com/ByLCY/bytecv/metrics"
	"github.com/ByLCY/bytecv/pipeline"
	canvasrenderer "github.com/ByLCY/bytecv/renderer/canvas"
	"github.com/ByLCY/bytecv/resume"
	"github.com/ByLCY/bytecv/server"
	"github.com/ByLCY/bytecv/session"
	"github.com/ByLCY/bytecv/storage"
	"github.com/ByLCY/bytecv/store"
)

const usage = `用法:
  bytecv serve  [-config file]
  bytecv render [-in doc.json] [-out resume.pdf] [-debug fit.json]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = serveCmd(os.Args[2:])
	case "render":
		err = renderCmd(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s 失败: %v", os.Args[1], err)
	}
}

func renderCmd(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	input := fs.String("in", "", "简历 JSON 记录路径，为空时使用默认文档")
	output := fs.String("out", "output/resume.pdf", "PDF 输出路径")
	debug := fs.String("debug", "", "布局调试 JSON 输出路径")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := runRender(*input, *output, *debug)
	if err != nil {
		return err
	}
	if res.Fit.Truncated {
		fmt.Fprintln(os.Stderr, server.TruncationWarning)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
	return nil
}

// runRender 读取记录、排版并写出 PDF 与可选的调试 JSON。
func runRender(inputPath, outputPath, debugPath string) (*layout.Result, error) {
	doc := resume.New()
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("无法打开简历文件 %s: %w", inputPath, err)
		}
		rec, err := resume.Decode(data)
		if err != nil {
			return nil, err
		}
		doc = rec.Document
	}

	theme, err := layout.DefaultTheme()
	if err != nil {
		return nil, fmt.Errorf("加载主题失败: %w", err)
	}
	exp := export.New(canvasrenderer.NewRenderer(""), theme, layout.A4, export.Options{
		Logger: logging.Component(logging.Discard(), "export"),
	})
	result, pdfBytes, err := exp.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := layout.WriteDebugJSON(result, debugPath); err != nil {
			return nil, fmt.Errorf("写入调试 JSON 失败: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return result, nil
}

func serveCmd(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "配置文件路径（yaml/json/toml）")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	theme, err := layout.DefaultTheme()
	if err != nil {
		return fmt.Errorf("加载主题失败: %w", err)
	}

	var sink export.Sink
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOSink(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return err
		}
		sink = s
	}

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	// 预览与导出各自持有一个排版面
	preview := pipeline.New(canvasrenderer.NewRenderer(""), theme, layout.A4)
	ctrl := session.New(ctx, preview, session.Options{
		Store:         st,
		AutosaveDelay: cfg.Session.AutosaveDelay,
		Logger:        logging.Component(logger, "session"),
	})
	exp := export.New(canvasrenderer.NewRenderer(""), theme, layout.A4, export.Options{
		Sink:   sink,
		URLTTL: cfg.MinIO.URLTTL,
		Logger: logging.Component(logger, "export"),
	})
	srv := server.New(ctrl, exp, server.Options{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Gatherer:       reg,
		Logger:         logging.Component(logger, "http"),
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.Server.ListenAddr, "store": cfg.Store.Kind}).Info("listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
	if err := ctrl.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("final save failed")
	}
	return nil
}

// openStore 按配置选择持久化实现，返回的关闭函数总是非空。
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Kind {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return store.NewRedisStore(client, ""), func() { client.Close() }, nil
	case "mongo":
		client, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return store.NewMongoStore(col), func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return store.NewFileStore(cfg.Store.Dir), func() {}, nil
	}
}
