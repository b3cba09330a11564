package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/roster"
	"github.com/jakechorley/weekend-duty/pkg/db"
)

// Scheduler runs the booking workflow: it validates requests against the
// ledger, resolves the affected month and keeps the final schedule in step.
type Scheduler struct {
	database  db.Database
	directory *roster.Directory
	calendar  *calendar.Calendar
	notifier  ConflictNotifier
	logger    *zap.Logger
	now       func() time.Time
	locks     *monthLocks
	notices   sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock overrides the clock used for past-date checks and timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithNotifier sends a notice to members who lose a contested date
func WithNotifier(notifier ConflictNotifier) Option {
	return func(s *Scheduler) {
		s.notifier = notifier
	}
}

// NewScheduler creates a scheduler over the given store and team
func NewScheduler(database db.Database, directory *roster.Directory, cal *calendar.Calendar, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		database:  database,
		directory: directory,
		calendar:  cal,
		logger:    logger,
		now:       time.Now,
		locks:     &monthLocks{locks: make(map[string]*sync.Mutex)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Directory returns the team directory the scheduler resolves against
func (s *Scheduler) Directory() *roster.Directory {
	return s.directory
}

// monthLocks serialises work on the same month within this process
type monthLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *monthLocks) lock(month string) func() {
	l.mu.Lock()
	m, ok := l.locks[month]
	if !ok {
		m = &sync.Mutex{}
		l.locks[month] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
