package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/models"
)

// TranscriptRepository persists transcripts in a local sqlite file.
type TranscriptRepository struct {
	db     *sql.DB
	cfg    DBConfig
	upsert *sql.Stmt
	get    *sql.Stmt
}

func NewTranscriptRepository(db *sql.DB, cfg DBConfig) (*TranscriptRepository, error) {
	const op = "sqlite.NewTranscriptRepository"

	upsert, err := db.Prepare(upsertTranscriptQuery)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to prepare upsert statement")
	}
	get, err := db.Prepare(getTranscriptQuery)
	if err != nil {
		upsert.Close()
		return nil, errors.Internal(op, err, "failed to prepare get statement")
	}

	return &TranscriptRepository{db: db, cfg: cfg, upsert: upsert, get: get}, nil
}

// Open initializes the database at path and returns a repository over it.
func Open(path string, cfg DBConfig) (*TranscriptRepository, error) {
	db, err := InitDB(path, cfg)
	if err != nil {
		return nil, err
	}
	repo, err := NewTranscriptRepository(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *TranscriptRepository) Save(ctx context.Context, t *models.Transcript) error {
	const op = "SQLiteTranscriptRepository.Save"

	fetchedAt := t.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	err := withRetry(ctx, r.cfg, func() error {
		_, err := r.upsert.ExecContext(ctx, t.VideoID, t.Text, fetchedAt)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to save transcript")
	}
	return nil
}

func (r *TranscriptRepository) Find(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "SQLiteTranscriptRepository.Find"

	t := &models.Transcript{}
	err := r.get.QueryRowContext(ctx, videoID).Scan(&t.VideoID, &t.Text, &t.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Transcript not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query transcript")
	}
	return t, nil
}

func (r *TranscriptRepository) Close() error {
	r.upsert.Close()
	r.get.Close()
	return r.db.Close()
}
