package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"voicecollect/internal/event"
	"voicecollect/internal/pkg/apperrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	profileSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_saves_total",
		Help: "Total number of customer profiles persisted.",
	})

	profileRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_validation_rejections_total",
		Help: "Total number of customer submissions rejected by validation.",
	})
)

// Service owns the submission pipeline: validate, persist, notify.
type Service interface {
	SubmitProfile(ctx context.Context, fields map[string]json.RawMessage) (*Record, error)
	CurrentProfile(ctx context.Context) (*Record, error)
	RepaymentSummary(rec *Record) *RepaymentSummary
}

var _ Service = (*service)(nil)

type service struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
}

// NewService wires the profile pipeline. The publisher may be nil when
// eventing is disabled.
func NewService(repo Repository, pub event.Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("profile repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}
	return &service{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "profileService")),
	}
}

func (s *service) SubmitProfile(ctx context.Context, fields map[string]json.RawMessage) (*Record, error) {
	s.logger.InfoContext(ctx, "Processing customer profile submission")

	rec, err := FromSubmission(fields)
	if err != nil {
		profileRejectionsTotal.Inc()
		s.logger.WarnContext(ctx, "Submission failed validation", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist customer profile", slog.Any("error", err))
		return nil, err
	}
	profileSavesTotal.Inc()
	s.logger.InfoContext(ctx, "Customer profile saved", slog.String("email", rec.Email.Text()))

	s.publishUpdated(ctx, rec)
	return rec, nil
}

// CurrentProfile returns the active record, or (nil, nil) when no profile
// exists. Every load failure degrades to the absent state with a logged
// diagnostic, so prompt assembly always has a defined input.
func (s *service) CurrentProfile(ctx context.Context) (*Record, error) {
	rec, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoProfile) {
			s.logger.DebugContext(ctx, "No customer profile available")
		} else {
			s.logger.WarnContext(ctx, "Profile store unreadable, treating as absent", slog.Any("error", err))
		}
		return nil, nil
	}
	if !rec.Complete() {
		s.logger.WarnContext(ctx, "Stored profile is missing fields, treating as absent")
		return nil, nil
	}
	return rec, nil
}

// RepaymentSummary derives repaid-to-date figures from the verbatim
// amounts. Amounts that do not parse as decimals yield no summary rather
// than an error; presence-only validation allows non-numeric submissions.
type RepaymentSummary struct {
	AmountRepaid  string `json:"amountRepaid"`
	PercentRepaid string `json:"percentRepaid"`
}

func (s *service) RepaymentSummary(rec *Record) *RepaymentSummary {
	if rec == nil {
		return nil
	}
	loan, err := rec.Loan.Decimal()
	if err != nil {
		return nil
	}
	balance, err := rec.Balance.Decimal()
	if err != nil {
		return nil
	}
	if loan.Sign() <= 0 {
		return nil
	}

	repaid := loan.Sub(balance)
	percent := repaid.Div(loan).Mul(decimal.NewFromInt(100)).Round(2)

	return &RepaymentSummary{
		AmountRepaid:  repaid.String(),
		PercentRepaid: percent.String(),
	}
}

func (s *service) publishUpdated(ctx context.Context, rec *Record) {
	if s.pub == nil {
		return
	}
	evt := event.ProfileUpdatedEvent{
		Timestamp: time.Now(),
		Payload: event.ProfilePayload{
			Email:               rec.Email.Text(),
			Contact:             rec.Contact.Text(),
			Loan:                rec.Loan.Text(),
			Balance:             rec.Balance.Text(),
			Installment:         rec.Installment.Text(),
			NextInstallmentDate: rec.NextInstallmentDate.Text(),
			CurrentDateTime:     rec.CurrentDateTime.Text(),
		},
	}
	if err := s.pub.PublishProfileUpdated(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish profile update event", slog.Any("error", err))
	} else {
		s.logger.InfoContext(ctx, "Published profile update event")
	}
}
