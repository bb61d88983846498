package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the backlite dispatcher for cover fetches, exports and
// history pruning. The queue lives in its own SQLite file so the catalog
// database can use any driver.
type Client struct {
	backlite *backlite.Client
	db       *sql.DB
	workers  int
	path     string
	running  atomic.Bool
}

// QueuePath places the queue database beside the catalog database:
// "data/catalog.db" becomes "data/catalog-tasks.db".
func QueuePath(catalogDBPath string) string {
	ext := filepath.Ext(catalogDBPath)
	return strings.TrimSuffix(catalogDBPath, ext) + "-tasks" + ext
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}
	// Workers plus the dispatcher and the enqueueing request handlers.
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewClient opens the queue database that belongs to catalogDBPath and
// installs the backlite schema. Queues must be registered before Start.
func NewClient(catalogDBPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	path := QueuePath(catalogDBPath)

	db, err := openQueueDB(path, cfg.Workers)
	if err != nil {
		return nil, err
	}

	bl, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		Logger:          queueLogger{},
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
	})
	if err == nil {
		err = bl.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue at %s: %w", path, err)
	}

	return &Client{backlite: bl, db: db, workers: cfg.Workers, path: path}, nil
}

func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.backlite.Register(q)
	}
}

// Start launches the workers. Later calls do nothing.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[TASK] Queue started: %d workers, %s", c.workers, c.path)
	c.backlite.Start(ctx)
}

// Stop waits for in-flight tasks. It returns false if ctx ran out first.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.CompareAndSwap(true, false) {
		return true
	}
	if !c.backlite.Stop(ctx) {
		log.Println("[TASK] Queue stopped before all tasks finished")
		return false
	}
	log.Println("[TASK] Queue stopped")
	return true
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Enqueue stores one task and returns its id.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	ids, err := c.backlite.Add(task).Save()
	switch {
	case err != nil:
		return "", fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
	case len(ids) == 0:
		return "", errors.New("task queue returned no id")
	}
	return ids[0], nil
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.backlite.Status(ctx, taskID)
}

// Path is the location of the queue database.
func (c *Client) Path() string {
	return c.path
}

// queueLogger routes backlite's messages to the standard logger.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
