package usecase

import (
	"context"
	"log"
	"time"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// PopularityQueue accepts asynchronous popularity-increment submissions.
// Submissions are fire-and-forget: they must never block or fail a search.
type PopularityQueue interface {
	Submit(foodIDs []string)
}

// PopularityWorker drains submissions on a single background goroutine and
// applies atomic increments against the food store. Popularity is a soft
// signal: a full queue drops updates and increment errors are only logged.
type PopularityWorker struct {
	store domain.FoodStore
	tasks chan string
	done  chan struct{}
}

// NewPopularityWorker starts a worker with the given queue depth.
func NewPopularityWorker(store domain.FoodStore, buffer int) *PopularityWorker {
	if buffer <= 0 {
		buffer = 256
	}
	w := &PopularityWorker{
		store: store,
		tasks: make(chan string, buffer),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit enqueues increments for the given food IDs without blocking.
func (w *PopularityWorker) Submit(foodIDs []string) {
	for _, id := range foodIDs {
		select {
		case w.tasks <- id:
		default:
			log.Printf("[POPULARITY] queue full, dropping update for %s", id)
		}
	}
}

func (w *PopularityWorker) run() {
	defer close(w.done)
	for id := range w.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.store.IncrementPopularity(ctx, id); err != nil {
			log.Printf("[POPULARITY] increment failed for %s: %v", id, err)
		}
		cancel()
	}
}

// Close stops accepting submissions and waits for queued increments to
// finish.
func (w *PopularityWorker) Close() {
	close(w.tasks)
	<-w.done
}
