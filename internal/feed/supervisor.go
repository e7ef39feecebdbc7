// Package feed supervisor
package feed

import (
	"context"
	"sync"

	"Paper-Trading-Service/internal/model"
)

// tickBuffer bound of the multiplexed tick channel
const tickBuffer = 100

// Supervisor owns one worker per exchange and funnels all normalized ticks
// into a single channel. Ticks of one feed arrive in order, there is no
// ordering guarantee across feeds.
type Supervisor struct {
	workers []*Worker
	ticks   chan model.PriceTick
	wg      sync.WaitGroup
}

// NewSupervisor constructor
func NewSupervisor(adapters []Adapter) *Supervisor {
	supervisor := &Supervisor{ticks: make(chan model.PriceTick, tickBuffer)}
	for _, adapter := range adapters {
		supervisor.workers = append(supervisor.workers, NewWorker(adapter, supervisor.ticks))
	}
	return supervisor
}

// Ticks the multiplexed tick channel
func (s *Supervisor) Ticks() <-chan model.PriceTick {
	return s.ticks
}

// Start launches one goroutine per feed
func (s *Supervisor) Start(ctx context.Context) {
	for _, worker := range s.workers {
		w := worker
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Wait blocks until every worker has stopped, then closes the tick channel
func (s *Supervisor) Wait() {
	s.wg.Wait()
	close(s.ticks)
}
