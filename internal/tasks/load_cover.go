package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/covers"
)

// ImageLoader resolves a picked item into image bytes.
type ImageLoader interface {
	LoadImageData(ctx context.Context, item covers.PickedItem) ([]byte, error)
}

// CoverSetter stores a loaded cover on a book.
type CoverSetter interface {
	SetCover(ctx context.Context, bookID string, data []byte) error
}

// LoadCoverTask fetches a cover for one book in the background.
type LoadCoverTask struct {
	BookID string            `json:"book_id"`
	Item   covers.PickedItem `json:"item"`
}

// Config returns the queue configuration for cover loading tasks.
func (t LoadCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "load_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// LoadCoverProcessor creates a processor function for LoadCoverTask.
// Fetch failures are returned so the queue retries them; content that will
// never become a valid cover, and books removed while the fetch was in
// flight, end the task quietly.
func LoadCoverProcessor(loader ImageLoader, setter CoverSetter) backlite.QueueProcessor[LoadCoverTask] {
	return func(ctx context.Context, task LoadCoverTask) error {
		if loader == nil || setter == nil {
			return fmt.Errorf("cover loader not configured")
		}

		data, err := loader.LoadImageData(ctx, task.Item)
		switch {
		case errors.Is(err, covers.ErrNotImage), errors.Is(err, covers.ErrTooLarge):
			log.Printf("[TASK] Rejected cover %s for book %s: %v", task.Item, task.BookID, err)
			return nil
		case err != nil:
			return fmt.Errorf("load cover for book %s: %w", task.BookID, err)
		case data == nil:
			log.Printf("[TASK] Nothing picked for book %s, cover unchanged", task.BookID)
			return nil
		}

		err = setter.SetCover(ctx, task.BookID, data)
		if errors.Is(err, catalog.ErrNotFound) {
			log.Printf("[TASK] Book %s was removed before its cover arrived, dropping %d bytes", task.BookID, len(data))
			return nil
		}
		if err != nil {
			return fmt.Errorf("set cover for book %s: %w", task.BookID, err)
		}

		log.Printf("[TASK] Loaded cover for book %s from %s (%d bytes)", task.BookID, task.Item, len(data))
		return nil
	}
}

// NewLoadCoverQueue creates a backlite queue for cover loading tasks.
func NewLoadCoverQueue(loader ImageLoader, setter CoverSetter) backlite.Queue {
	return backlite.NewQueue(LoadCoverProcessor(loader, setter))
}
