package profile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"voicecollect/internal/event"
	"voicecollect/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Save(ctx context.Context, rec *Record) error {
	ret := _m.Called(ctx, rec)
	return ret.Error(0)
}

func (_m *MockRepository) Load(ctx context.Context) (*Record, error) {
	ret := _m.Called(ctx)

	var r0 *Record
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Record)
	}
	return r0, ret.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (_m *MockPublisher) PublishProfileUpdated(ctx context.Context, evt event.ProfileUpdatedEvent) error {
	ret := _m.Called(ctx, evt)
	return ret.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitProfile(t *testing.T) {
	t.Run("Valid submission is saved and published", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		svc := NewService(repo, pub, discardLogger())

		repo.On("Save", mock.Anything, mock.AnythingOfType("*profile.Record")).Return(nil)
		pub.On("PublishProfileUpdated", mock.Anything, mock.AnythingOfType("event.ProfileUpdatedEvent")).Return(nil)

		rec, err := svc.SubmitProfile(context.Background(), fullSubmission())
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", rec.Email.Text())

		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("Missing fields are rejected before the store is touched", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, discardLogger())

		_, err := svc.SubmitProfile(context.Background(), map[string]json.RawMessage{
			"email": json.RawMessage(`"a@x.com"`),
		})

		var mf *apperrors.MissingFieldsError
		require.True(t, errors.As(err, &mf))
		assert.Len(t, mf.Fields, 6)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Persistence failure propagates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, discardLogger())

		storeErr := apperrors.WrapPersistenceError(errors.New("disk full"), "failed to write")
		repo.On("Save", mock.Anything, mock.Anything).Return(storeErr)

		_, err := svc.SubmitProfile(context.Background(), fullSubmission())
		assert.ErrorIs(t, err, apperrors.ErrPersistence)
	})

	t.Run("Publish failure does not fail the submission", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		svc := NewService(repo, pub, discardLogger())

		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		pub.On("PublishProfileUpdated", mock.Anything, mock.Anything).Return(errors.New("broker down"))

		_, err := svc.SubmitProfile(context.Background(), fullSubmission())
		assert.NoError(t, err)
	})
}

func TestCurrentProfile(t *testing.T) {
	t.Run("Returns stored record", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, discardLogger())

		stored, err := FromSubmission(fullSubmission())
		require.NoError(t, err)
		repo.On("Load", mock.Anything).Return(stored, nil)

		rec, err := svc.CurrentProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", rec.Email.Text())
	})

	t.Run("Absence degrades to nil without error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, discardLogger())

		repo.On("Load", mock.Anything).Return(nil, apperrors.ErrNoProfile)

		rec, err := svc.CurrentProfile(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Unreadable store degrades to nil without error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, discardLogger())

		repo.On("Load", mock.Anything).Return(nil, errors.New("permission denied"))

		rec, err := svc.CurrentProfile(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Incomplete stored record degrades to nil", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, discardLogger())

		repo.On("Load", mock.Anything).Return(&Record{Email: StringValue("a@x.com")}, nil)

		rec, err := svc.CurrentProfile(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestRepaymentSummary(t *testing.T) {
	svc := NewService(new(MockRepository), nil, discardLogger())

	t.Run("Exact decimal arithmetic", func(t *testing.T) {
		rec, err := FromSubmission(map[string]json.RawMessage{
			"email":               json.RawMessage(`"a@x.com"`),
			"contact":             json.RawMessage(`"+1-555-0100"`),
			"loan":                json.RawMessage(`100000.00`),
			"balance":             json.RawMessage(`50000.50`),
			"installment":         json.RawMessage(`5000.10`),
			"nextInstallmentDate": json.RawMessage(`"2024-11-23"`),
			"currentDateTime":     json.RawMessage(`"2024-11-01T00:00:00Z"`),
		})
		require.NoError(t, err)

		sum := svc.RepaymentSummary(rec)
		require.NotNil(t, sum)
		assert.Equal(t, "49999.5", sum.AmountRepaid)
		assert.Equal(t, "50", sum.PercentRepaid)
	})

	t.Run("Non-numeric amounts yield no summary", func(t *testing.T) {
		fields := fullSubmission()
		fields["loan"] = json.RawMessage(`"ten grand"`)
		rec, err := FromSubmission(fields)
		require.NoError(t, err)

		assert.Nil(t, svc.RepaymentSummary(rec))
	})

	t.Run("Nil record yields no summary", func(t *testing.T) {
		assert.Nil(t, svc.RepaymentSummary(nil))
	})
}
