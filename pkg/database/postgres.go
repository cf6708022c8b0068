package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tkmproject/tkm-api/pkg/config"
)

// DSN renders the libpq connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ListenerFactory opens a dedicated LISTEN connection. Each call owns its connection.
type ListenerFactory func(onEvent func(pq.ListenerEventType, error)) *pq.Listener

// NewListenerFactory binds pq listeners to cfg with bounded reconnect backoff.
func NewListenerFactory(cfg config.DatabaseConfig) ListenerFactory {
	dsn := DSN(cfg)
	return func(onEvent func(pq.ListenerEventType, error)) *pq.Listener {
		return pq.NewListener(dsn, 2*time.Second, time.Minute, onEvent)
	}
}
