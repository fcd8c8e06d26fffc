package interfaces

import "context"

type SchedulerInterface interface {
	Init()
	Stop()
	// RunOnce performs a single fetch, aggregate and publish cycle.
	RunOnce(ctx context.Context) error
	Restore() error
	Persist() error
}
