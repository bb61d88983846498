package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// HistoryPruner removes old catalog history and records each pruning run.
type HistoryPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
	LogPrune(deleted int64, retentionDays int, err error)
}

// PruneHistoryTask deletes history events older than RetentionDays.
type PruneHistoryTask struct {
	RetentionDays int `json:"retention_days"`
}

const DefaultHistoryRetentionDays = 30

func (t PruneHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_history",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t PruneHistoryTask) retention() (int, time.Duration) {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultHistoryRetentionDays
	}
	return days, time.Duration(days) * 24 * time.Hour
}

// PruneHistoryProcessor deletes expired events. A failed run is recorded in
// the history too, so the next successful run shows up after it.
func PruneHistoryProcessor(pruner HistoryPruner) backlite.QueueProcessor[PruneHistoryTask] {
	return func(ctx context.Context, task PruneHistoryTask) error {
		if pruner == nil {
			return errors.New("history pruner not configured")
		}

		days, retention := task.retention()
		deleted, err := pruner.DeleteOldEvents(retention)
		pruner.LogPrune(deleted, days, err)
		if err != nil {
			return fmt.Errorf("prune history: %w", err)
		}

		if deleted > 0 {
			log.Printf("[TASK] Pruned %d history events older than %d days", deleted, days)
		}
		return nil
	}
}

func NewPruneHistoryQueue(pruner HistoryPruner) backlite.Queue {
	return backlite.NewQueue(PruneHistoryProcessor(pruner))
}
