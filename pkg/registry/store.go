// Package registry implements the traffic-violation registry: entity
// repositories over a relational store, token-based identity resolution,
// and the per-resource authorization policy behind the HTTP API.
package registry

import (
	"context"
	"crypto/rand"
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageSize caps every list query. Results are a single page sorted by
// primary ID descending (plate ascending for vehicles).
const PageSize = 50

// Error taxonomy. Store methods classify database errors into these
// sentinels at the repository boundary; handlers map them to HTTP statuses.
var (
	// ErrConflict covers uniqueness and referential-integrity violations.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned when a delete/respond target is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized covers failed login and invalid tokens. The cause is
	// never detailed to the caller.
	ErrUnauthorized = errors.New("unauthorized")
)

const tokenSecretName = "token_secret"

// IDGenerator produces monotonically time-ordered unique IDs on demand.
type IDGenerator interface {
	NextID() int64
}

// Store wraps the database handle with the registry's repositories.
type Store struct {
	db     *gorm.DB
	ids    IDGenerator
	logger *slog.Logger
}

// NewStore creates a Store. The gorm handle should be opened with
// TranslateError enabled so constraint violations classify reliably.
func NewStore(db *gorm.DB, ids IDGenerator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, ids: ids, logger: logger}
}

// Migrate creates tables, recreates the denormalized views, and ensures the
// persistent token secret exists. It is idempotent and safe to replay; run
// it under the ha.BootstrapLocker when replicas share a database.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	if err := db.AutoMigrate(
		&UserRecord{},
		&VehicleRecord{},
		&ViolationRecord{},
		&RefutationRecord{},
		&TransactionRecord{},
		&DetectedRecord{},
		&ConfigRecord{},
		&AuditEventRecord{},
	); err != nil {
		return fmt.Errorf("auto-migrate registry tables: %w", err)
	}

	// Views depend on each other; drop in reverse order, create in order.
	for i := len(viewDefinitions) - 1; i >= 0; i-- {
		if err := db.Exec("DROP VIEW IF EXISTS " + viewDefinitions[i].name).Error; err != nil {
			return fmt.Errorf("drop view %s: %w", viewDefinitions[i].name, err)
		}
	}
	for _, v := range viewDefinitions {
		if err := db.Exec("CREATE VIEW " + v.name + " AS " + v.query).Error; err != nil {
			return fmt.Errorf("create view %s: %w", v.name, err)
		}
	}

	if err := s.ensureTokenSecret(ctx); err != nil {
		return err
	}
	return nil
}

// ensureTokenSecret generates the shared signing secret on first bootstrap.
// Replicas that lose the insert race keep the winner's secret.
func (s *Store) ensureTokenSecret(ctx context.Context) error {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate token secret: %w", err)
	}

	row := ConfigRecord{Name: tokenSecretName, Value: hex.EncodeToString(raw)}
	err := s.db.WithContext(ctx).Create(&row).Error
	if err != nil && !isDuplicate(err) {
		return fmt.Errorf("store token secret: %w", err)
	}
	return nil
}

// TokenSecret loads the shared signing secret from persistent configuration.
func (s *Store) TokenSecret(ctx context.Context) ([]byte, error) {
	var row ConfigRecord
	err := s.db.WithContext(ctx).Where("name = ?", tokenSecretName).First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("load token secret: %w", err)
	}
	secret, err := hex.DecodeString(row.Value)
	if err != nil {
		return nil, fmt.Errorf("decode token secret: %w", err)
	}
	return secret, nil
}

// AppendAudit records a write operation. Best-effort: failures are logged,
// never propagated to the request that caused the write.
func (s *Store) AppendAudit(ctx context.Context, actorID int64, action, target string) {
	event := AuditEventRecord{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		s.logger.Warn("audit append failed", "action", action, "target", target, "error", err)
	}
}

// withRetry runs op and replays it exactly once if the error indicates a
// stale or dropped connection. Any other error, or a second transient
// failure, propagates.
func (s *Store) withRetry(ctx context.Context, op func(tx *gorm.DB) error) error {
	err := op(s.db.WithContext(ctx))
	if err == nil || !isTransient(err) {
		return err
	}
	s.logger.Warn("transient connection error, retrying once", "error", err)
	return op(s.db.WithContext(ctx))
}

// isTransient reports whether err indicates a connection the pool should
// discard and the operation should be replayed on.
func isTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn)
}

// isDuplicate reports whether err is a unique-constraint violation. The
// string fallbacks cover dialects whose drivers predate gorm's error
// translation.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// isForeignKeyViolation reports whether err is a referential-integrity
// violation.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "violates foreign key")
}

// conflict wraps ErrConflict with the precondition named to the caller.
func conflict(message string) error {
	return fmt.Errorf("%w: %s", ErrConflict, message)
}

// notFound wraps ErrNotFound with the missing target named.
func notFound(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}
