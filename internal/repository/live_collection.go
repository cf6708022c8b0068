package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/models"
)

type snapshotter interface {
	Snapshot(ctx context.Context, collection string) ([]models.Document, error)
}

// notificationStream is the subset of *pq.Listener used by subscriptions.
type notificationStream interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// StreamOpener opens one LISTEN connection per subscription.
type StreamOpener func() notificationStream

// PostgresCollection exposes one mirror collection as a push subscription
// driven by LISTEN/NOTIFY.
type PostgresCollection struct {
	name         string
	repo         snapshotter
	open         StreamOpener
	pingInterval time.Duration
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewPostgresCollection builds a live collection. listen opens a pq listener.
func NewPostgresCollection(name string, repo *SubmissionRepository, listen func(func(pq.ListenerEventType, error)) *pq.Listener, logger *zap.Logger) *PostgresCollection {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &PostgresCollection{
		name:         name,
		repo:         repo,
		pingInterval: 90 * time.Second,
		queryTimeout: 10 * time.Second,
		logger:       logger,
	}
	c.open = func() notificationStream {
		return listen(func(ev pq.ListenerEventType, err error) {
			if err != nil {
				c.logger.Warn("submission listener event", zap.String("collection", name), zap.Int("event", int(ev)), zap.Error(err))
			}
		})
	}
	return c
}

// Name returns the collection name.
func (c *PostgresCollection) Name() string {
	return c.name
}

// Subscribe delivers a full snapshot now and again after every change to the
// collection. The returned function stops delivery; after it returns no
// callback runs. It must not be called from inside a callback.
func (c *PostgresCollection) Subscribe(onSnapshot func([]models.Document), onError func(error)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	stream := c.open()

	go func() {
		defer close(done)
		defer stream.Close() //nolint:errcheck

		if err := stream.Listen(NotifyChannel); err != nil {
			onError(fmt.Errorf("listen %s: %w", c.name, err))
		}
		c.push(ctx, onSnapshot, onError)

		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		notifications := stream.NotificationChannel()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-notifications:
				if !ok {
					return
				}
				// nil follows a reconnect; events may have been missed.
				if n == nil || n.Extra == c.name {
					c.push(ctx, onSnapshot, onError)
				}
			case <-ticker.C:
				if err := stream.Ping(); err != nil {
					c.logger.Debug("submission listener ping failed", zap.String("collection", c.name), zap.Error(err))
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (c *PostgresCollection) push(ctx context.Context, onSnapshot func([]models.Document), onError func(error)) {
	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	docs, err := c.repo.Snapshot(qctx, c.name)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		onError(err)
		return
	}
	onSnapshot(docs)
}
