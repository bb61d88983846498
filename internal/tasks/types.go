package tasks

import (
	"time"

	"github.com/mikestefanello/backlite"
)

// TypeInfo describes a task type and how its queue retries.
type TypeInfo struct {
	Name        string
	Description string
	MaxAttempts int
	Timeout     time.Duration
}

var knownTypes = []struct {
	task        backlite.Task
	description string
}{
	{LoadCoverTask{}, "Fetch a book cover from a URL"},
	{ExportCatalogTask{}, "Write every book to markdown"},
	{PruneHistoryTask{}, "Delete old catalog history"},
}

// Types lists every task type the service can queue.
func Types() []TypeInfo {
	types := make([]TypeInfo, 0, len(knownTypes))
	for _, k := range knownTypes {
		cfg := k.task.Config()
		types = append(types, TypeInfo{
			Name:        cfg.Name,
			Description: k.description,
			MaxAttempts: cfg.MaxAttempts,
			Timeout:     cfg.Timeout,
		})
	}
	return types
}
