package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/tkmproject/tkm-api/internal/models"
)

// NotifyChannel is the LISTEN/NOTIFY channel carrying the changed collection name.
const NotifyChannel = "submissions"

const submissionsSchema = `
CREATE TABLE IF NOT EXISTS submissions (
	id UUID PRIMARY KEY,
	collection TEXT NOT NULL,
	data JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'new',
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_submissions_collection_submitted_at
	ON submissions (collection, submitted_at DESC);
CREATE OR REPLACE FUNCTION notify_submission() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'DELETE' THEN
		PERFORM pg_notify('submissions', OLD.collection);
		RETURN OLD;
	END IF;
	PERFORM pg_notify('submissions', NEW.collection);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;
DROP TRIGGER IF EXISTS submissions_notify ON submissions;
CREATE TRIGGER submissions_notify AFTER INSERT OR UPDATE OR DELETE ON submissions
	FOR EACH ROW EXECUTE FUNCTION notify_submission();
`

type submissionRow struct {
	ID          string         `db:"id"`
	Collection  string         `db:"collection"`
	Data        types.JSONText `db:"data"`
	Status      string         `db:"status"`
	SubmittedAt time.Time      `db:"submitted_at"`
}

// SubmissionRepository stores mirrored form submissions as JSONB documents.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new instance of SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// EnsureSchema creates the submissions table and its change trigger.
func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, submissionsSchema); err != nil {
		return fmt.Errorf("ensure submissions schema: %w", err)
	}
	return nil
}

// Insert writes a document with a generated id; the database assigns submitted_at.
func (r *SubmissionRepository) Insert(ctx context.Context, collection string, data map[string]interface{}) (*models.Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	doc := &models.Document{
		ID:         uuid.NewString(),
		Collection: collection,
		Data:       data,
		Status:     models.StatusNew,
	}
	const query = `INSERT INTO submissions (id, collection, data, status) VALUES ($1, $2, $3, $4) RETURNING submitted_at`
	if err := r.db.QueryRowxContext(ctx, query, doc.ID, collection, types.JSONText(raw), doc.Status).Scan(&doc.SubmittedAt); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return doc, nil
}

// Snapshot returns every document of collection, newest first.
func (r *SubmissionRepository) Snapshot(ctx context.Context, collection string) ([]models.Document, error) {
	const query = `SELECT id, collection, data, status, submitted_at FROM submissions WHERE collection = $1 ORDER BY submitted_at DESC`
	var rows []submissionRow
	if err := r.db.SelectContext(ctx, &rows, query, collection); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", collection, err)
	}

	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		data := map[string]interface{}{}
		if err := row.Data.Unmarshal(&data); err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", row.ID, err)
		}
		docs = append(docs, models.Document{
			ID:          row.ID,
			Collection:  row.Collection,
			Data:        data,
			Status:      row.Status,
			SubmittedAt: row.SubmittedAt,
		})
	}
	return docs, nil
}
