package sandbox

import (
	"context"
	"sync"
	"time"

	"openlms/course-app/internal/domain"

	"github.com/rs/zerolog"
)

// Dispatcher decouples sandbox provisioning from the enrollment transaction.
// Enroll submits a request and returns immediately; a worker goroutine drains
// the queue and calls the provisioner with its own timeout. Failures are
// logged on the dispatcher's channel and never reach the enrolling caller.
type Dispatcher struct {
	provisioner Provisioner
	queue       chan request
	timeout     time.Duration
	logger      zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

type request struct {
	user        *domain.User
	sandboxType string
}

// NewDispatcher creates a Dispatcher with the given queue capacity.
func NewDispatcher(provisioner Provisioner, queueSize int, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		provisioner: provisioner,
		queue:       make(chan request, queueSize),
		timeout:     timeout,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start launches the worker goroutine. Safe to call once.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
	})
}

// Enqueue submits a provisioning request without blocking. When the queue is
// full the request is dropped and logged; provisioning is best-effort.
func (d *Dispatcher) Enqueue(user *domain.User, sandboxType string) {
	select {
	case d.queue <- request{user: user, sandboxType: sandboxType}:
	default:
		d.logger.Warn().
			Str("userId", user.ID.Hex()).
			Str("sandboxType", sandboxType).
			Msg("Sandbox queue full, dropping provisioning request")
	}
}

// Stop closes the queue and waits for the worker to drain it.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for req := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		sandbox, err := d.provisioner.Initialize(ctx, req.user, req.sandboxType)
		cancel()
		if err != nil {
			d.logger.Error().Err(err).
				Str("userId", req.user.ID.Hex()).
				Str("sandboxType", req.sandboxType).
				Msg("Sandbox provisioning failed")
			continue
		}
		d.logger.Info().
			Str("sandboxId", sandbox.ID).
			Str("userId", req.user.ID.Hex()).
			Str("sandboxType", req.sandboxType).
			Msg("Sandbox provisioned")
	}
}
