package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrSchedulerRunning = errors.New("scheduler already running")

const DefaultRevalidateInterval = time.Minute

// Scheduler re-validates a controller on a fixed interval and whenever one of the
// session keys changes in the store. One goroutine owns the ticker and the subscription.
type Scheduler struct {
	ctrl         *Controller
	store        credentials.Store
	interval     time.Duration
	verifyRemote bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type SchedulerOption func(*Scheduler)

func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRemoteVerification also asks the backend for the current profile on every tick.
func WithRemoteVerification() SchedulerOption {
	return func(s *Scheduler) {
		s.verifyRemote = true
	}
}

func NewScheduler(ctrl *Controller, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		ctrl:     ctrl,
		store:    ctrl.store,
		interval: DefaultRevalidateInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the initial check and starts re-validation until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
			// The previous run ended with its context.
			s.cancel()
			s.cancel, s.done = nil, nil
		default:
			return ErrSchedulerRunning
		}
	}

	// Subscribe before the first check so no change between the two is missed.
	events, unsubscribe := s.store.Subscribe()
	s.ctrl.Check()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, events, unsubscribe, s.done)
	return nil
}

// Stop ends re-validation and waits for the goroutine to exit. Stopping a scheduler
// that is not running is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context, events <-chan credentials.ChangeEvent, unsubscribe func(), done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		unsubscribe()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			s.tick(ctx)

		case ev, ok := <-events:
			if !ok {
				return
			}
			relevant := credentials.IsSessionKey(ev.Key)
			// Coalesce a burst such as a full login write into one check.
		drain:
			for {
				select {
				case next, ok := <-events:
					if !ok {
						break drain
					}
					relevant = relevant || credentials.IsSessionKey(next.Key)
				default:
					break drain
				}
			}
			if relevant {
				log.Debug().Str("key", ev.Key).Bool("external", ev.External).Msg("credentials changed, re-validating")
				s.ctrl.Check()
			}
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.ctrl.Check() != StateAuthenticated || !s.verifyRemote {
		return
	}
	if _, err := s.ctrl.VerifyRemote(ctx); err != nil && client.Classify(err) != client.KindNetwork {
		log.Err(err).Msg("remote session verification failed")
	}
}
