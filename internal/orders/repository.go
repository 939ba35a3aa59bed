package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	ErrDuplicateSubmission    = errors.New("submission for this idempotency key already exists")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrIllegalTransition      = errors.New("illegal transition of submission status")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Submission is the durable record of one order handed to the external
// commerce API: the draft that went over the wire plus where it got.
type Submission struct {
	ID             uuid.UUID
	UserID         string
	IdempotencyKey string
	Status         domain.SubmissionStatus
	Draft          []byte // OrderDraft JSON as submitted
	TotalAmount    decimal.Decimal
	RemoteOrderID  *string
	FailureReason  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type RepoInterface interface {
	GetSubmissionByIdempotencyKey(ctx context.Context, key string) (*Submission, error)
	CreateSubmission(ctx context.Context, s *Submission) error
	SetSubmitted(ctx context.Context, id uuid.UUID, remoteOrderID string) error
	CompleteSubmission(ctx context.Context, id uuid.UUID, payload []byte) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID int64) error
	GetStuckSubmissions(ctx context.Context) ([]*Submission, error)
	RunMigrations(*Credentials) error
	Close() error
}
