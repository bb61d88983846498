package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/covers"
	"github.com/mrlokans/bookcatalog/internal/demo"
	"github.com/mrlokans/bookcatalog/internal/exporters"
	http_controllers "github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/scheduler"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// ensureWritableDir creates dir if needed and checks that files can be
// written to it.
func ensureWritableDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory is not set")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".bookcatalog")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	f.Close()
	return os.Remove(probe)
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// SIGKILL cannot be caught, so only INT and TERM trigger a graceful stop.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work is stopped after the server so no request can
	// enqueue into a stopped queue.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Catalog v%s", version)

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		log.Printf("Demo mode enabled - write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true)
	}

	ctx := context.Background()

	app, err := OpenCatalog(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}

	if cfg.Demo.Enabled && app.Repo.Snapshot().Stats().Books == 0 {
		if err := demo.Seed(ctx, app.Repo, cfg.Demo.SeedBooks, cfg.Demo.Seed); err != nil {
			log.Printf("WARNING: Failed to seed demo catalog: %v", err)
		}
	}

	if err := ensureWritableDir(cfg.Export.Dir); err != nil {
		log.Fatalf("Export directory unusable: %v", err)
	}
	log.Printf("Markdown export directory: %s", cfg.Export.Dir)
	exporter := exporters.NewMarkdownExporter(cfg.Export.Dir)

	loader := covers.NewLoader(covers.LoaderConfig{
		Timeout:  cfg.Covers.FetchTimeout,
		MaxBytes: cfg.Covers.MaxBytes,
		Rate:     cfg.Covers.FetchRate,
		Burst:    cfg.Covers.FetchBurst,
	})

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var sched *scheduler.Scheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}

		taskClient.Register(
			tasks.NewLoadCoverQueue(loader, app.Repo),
			tasks.NewExportCatalogQueue(app.Repo, exporter, app.ExportReporter()),
		)
		if app.Audit != nil {
			taskClient.Register(tasks.NewPruneHistoryQueue(app.Audit))
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		sched = scheduler.New(taskClient, scheduler.JobsFromConfig(cfg.Export, cfg.Audit)...)
		if err := sched.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	} else {
		log.Printf("Task queue disabled: covers cannot be fetched and exports run inline")
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        app.Repo,
		Database:       app.DB,
		TaskWorkers:    cfg.Tasks.Workers,
		Exporter:       exporter,
		ExportReporter: app.ExportReporter(),
		MaxCoverBytes:  cfg.Covers.MaxBytes,
		DemoMiddleware: demoMiddleware,
		Version:        version,
	}
	// Interface fields stay nil rather than holding typed nil pointers.
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if app.Audit != nil {
		routerCfg.History = app.Audit
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sched != nil {
			sched.Stop()
		}
		if taskClient != nil {
			if !taskClient.Stop(ctx) {
				log.Printf("Task workers did not stop before the shutdown timeout")
			}
			taskCtxCancel()
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	Serve(router, cfg, onShutdown)
}
