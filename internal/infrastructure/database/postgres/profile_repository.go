package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"voicecollect/internal/domain/profile"
	"voicecollect/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

// The store holds at most one record. A fixed key keeps the upsert
// targeting the same row on every save.
const profileRowID = 1

type ProfileRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(db DBPool, logger *slog.Logger) *ProfileRepository {
	if db == nil {
		panic("DBPool cannot be nil for ProfileRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewProfileRepository, using default stderr handler")
	}
	return &ProfileRepository{
		db:     db,
		logger: logger.With("component", "ProfileRepository"),
	}
}

func (r *ProfileRepository) Save(ctx context.Context, rec *profile.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record cannot be nil", apperrors.ErrInvalidArgument)
	}

	document, err := json.Marshal(rec)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to marshal profile record", slog.Any("error", err))
		return fmt.Errorf("%w: failed to marshal profile record: %w", apperrors.ErrPersistence, err)
	}

	r.logger.InfoContext(ctx, "Attempting to upsert customer profile")

	query := `
        INSERT INTO customer_profile (id, document, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (id) DO UPDATE
        SET document = EXCLUDED.document, updated_at = NOW()`

	_, err = r.db.Exec(ctx, query, profileRowID, document)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert customer profile", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Customer profile upserted successfully")
	return nil
}

func (r *ProfileRepository) Load(ctx context.Context) (*profile.Record, error) {
	r.logger.InfoContext(ctx, "Attempting to load customer profile")

	query := `SELECT document FROM customer_profile WHERE id = $1`

	var document []byte
	err := r.db.QueryRow(ctx, query, profileRowID).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.InfoContext(ctx, "No customer profile stored")
			return nil, apperrors.ErrNoProfile
		}
		r.logger.ErrorContext(ctx, "Failed to query customer profile", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to load customer profile: %w", apperrors.ErrDatabase, err)
	}

	var rec profile.Record
	if err := json.Unmarshal(document, &rec); err != nil {
		// An unreadable document is treated the same as no document.
		r.logger.WarnContext(ctx, "Stored profile document is unreadable, treating as absent", slog.Any("error", err))
		return nil, fmt.Errorf("%w: stored profile document is unreadable: %w", apperrors.ErrNoProfile, err)
	}

	r.logger.InfoContext(ctx, "Customer profile loaded successfully")
	return &rec, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNoProfile
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
