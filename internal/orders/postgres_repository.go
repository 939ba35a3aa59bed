package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// stuckAfter is how long a SUBMITTED row may sit without its outbox event
// before the poller re-completes it.
const stuckAfter = time.Minute

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	logrus.Info("Connected to postgres")
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

const submissionColumns = `id, user_id, idempotency_key, status, draft, total_amount, remote_order_id, failure_reason, created_at, updated_at`

func (r *Repository) GetSubmissionByIdempotencyKey(ctx context.Context, key string) (*Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE idempotency_key = $1`

	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdempotencyKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query submission by idempotency key: %w", err)
	}
	return s, nil
}

func (r *Repository) CreateSubmission(ctx context.Context, s *Submission) error {
	query := `INSERT INTO submissions (id, user_id, idempotency_key, status, draft, total_amount, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.IdempotencyKey,
		s.Status,
		s.Draft,
		s.TotalAmount)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("insert submission: %w", insertErr)
	}
	return nil
}

// SetSubmitted moves INITIATED -> SUBMITTED and records the order id the
// commerce API handed back. The status guard is in the WHERE clause, a
// row in any other state means an illegal transition.
func (r *Repository) SetSubmitted(ctx context.Context, id uuid.UUID, remoteOrderID string) error {
	query := `UPDATE submissions SET status = $1, remote_order_id = $2, updated_at = NOW()
	          WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query,
		domain.SubmissionStatusSubmitted, remoteOrderID, id, domain.SubmissionStatusInitiated)
	if err != nil {
		return fmt.Errorf("set submitted: %w", err)
	}
	return checkTransition(result)
}

// CompleteSubmission flips SUBMITTED -> COMPLETED and stores the outbox
// event in the same transaction, so the event exists iff the status does.
func (r *Repository) CompleteSubmission(ctx context.Context, id uuid.UUID, payload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE submissions SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		domain.SubmissionStatusCompleted, id, domain.SubmissionStatusSubmitted)
	if err != nil {
		return fmt.Errorf("complete submission: %w", err)
	}
	if err := checkTransition(result); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at) VALUES ($1, $2, $3, NOW())`,
		id.String(), "order.completed", payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit complete tx: %w", err)
	}
	return nil
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE submissions SET status = $1, failure_reason = $2, updated_at = NOW()
	          WHERE id = $3 AND status IN ($4, $5)`

	result, err := r.db.ExecContext(ctx, query,
		domain.SubmissionStatusFailed, reason, id,
		domain.SubmissionStatusInitiated, domain.SubmissionStatusSubmitted)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return checkTransition(result)
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at, processed_at
	          FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("mark event as processed: %w", err)
	}
	return nil
}

// GetStuckSubmissions finds SUBMITTED rows whose completing transaction
// never landed: old enough and with no outbox event.
func (r *Repository) GetStuckSubmissions(ctx context.Context) ([]*Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions s
	          WHERE s.status = $1
	            AND s.updated_at < NOW() - $2::interval
	            AND NOT EXISTS (SELECT 1 FROM outbox_events e WHERE e.aggregate_id = s.id::text)`

	rows, err := r.db.QueryContext(ctx, query,
		domain.SubmissionStatusSubmitted, fmt.Sprintf("%d seconds", int(stuckAfter.Seconds())))
	if err != nil {
		return nil, fmt.Errorf("query stuck submissions: %w", err)
	}
	defer rows.Close()

	var subs []*Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stuck submission: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return subs, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// decimal.Decimal scans and values through database/sql directly.
func scanSubmission(row rowScanner) (*Submission, error) {
	s := &Submission{}
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.IdempotencyKey,
		&s.Status,
		&s.Draft,
		&s.TotalAmount,
		&s.RemoteOrderID,
		&s.FailureReason,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func checkTransition(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrIllegalTransition
	}
	return nil
}
