package profile

import (
	"encoding/json"
	"errors"
	"testing"

	"voicecollect/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSubmission() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"email":               json.RawMessage(`"a@x.com"`),
		"contact":             json.RawMessage(`"+1-555-0100"`),
		"loan":                json.RawMessage(`10000`),
		"balance":             json.RawMessage(`4000`),
		"installment":         json.RawMessage(`500`),
		"nextInstallmentDate": json.RawMessage(`"2025-01-15"`),
		"currentDateTime":     json.RawMessage(`"2024-12-01T00:00:00Z"`),
	}
}

func TestCheckRequired(t *testing.T) {
	t.Run("All fields present", func(t *testing.T) {
		assert.NoError(t, CheckRequired(fullSubmission()))
	})

	t.Run("Extra fields are tolerated", func(t *testing.T) {
		fields := fullSubmission()
		fields["nickname"] = json.RawMessage(`"Dave"`)
		assert.NoError(t, CheckRequired(fields))
	})

	t.Run("Single field reports the other six in declared order", func(t *testing.T) {
		err := CheckRequired(map[string]json.RawMessage{
			"email": json.RawMessage(`"a@x.com"`),
		})
		var mf *apperrors.MissingFieldsError
		require.True(t, errors.As(err, &mf))
		assert.Equal(t, []string{
			"contact", "loan", "balance", "installment",
			"nextInstallmentDate", "currentDateTime",
		}, mf.Fields)
	})

	t.Run("Nil input is classified, not a panic", func(t *testing.T) {
		err := CheckRequired(nil)
		var mf *apperrors.MissingFieldsError
		require.True(t, errors.As(err, &mf))
		assert.Equal(t, RequiredFields, mf.Fields)
	})

	t.Run("Null values still count as present", func(t *testing.T) {
		fields := fullSubmission()
		fields["loan"] = json.RawMessage(`null`)
		assert.NoError(t, CheckRequired(fields))
	})
}

func TestFromSubmission(t *testing.T) {
	t.Run("Builds a complete record", func(t *testing.T) {
		rec, err := FromSubmission(fullSubmission())
		require.NoError(t, err)
		assert.True(t, rec.Complete())
		assert.Equal(t, "a@x.com", rec.Email.Text())
		assert.Equal(t, "10000", rec.Loan.Text())
	})

	t.Run("Discards extra fields", func(t *testing.T) {
		fields := fullSubmission()
		fields["nickname"] = json.RawMessage(`"Dave"`)
		rec, err := FromSubmission(fields)
		require.NoError(t, err)

		body, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "nickname")
	})

	t.Run("Rejects incomplete submission", func(t *testing.T) {
		_, err := FromSubmission(map[string]json.RawMessage{})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestValueVerbatim(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		text string
	}{
		{"Integer amount", `500`, "500"},
		{"Amount with trailing zeros", `5000.00`, "5000.00"},
		{"Quoted amount", `"500.10"`, "500.10"},
		{"Plain string", `"a@x.com"`, "a@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValue(json.RawMessage(tt.raw))
			assert.Equal(t, tt.text, v.Text())

			// Marshal must reproduce the submitted bytes exactly.
			out, err := json.Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, string(out))
		})
	}
}

func TestValueRoundTripThroughRecord(t *testing.T) {
	rec, err := FromSubmission(fullSubmission())
	require.NoError(t, err)

	body, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, rec.Loan.Text(), back.Loan.Text())
	assert.Equal(t, rec.Email.Text(), back.Email.Text())
	assert.True(t, back.Complete())
}

func TestValueDecimal(t *testing.T) {
	v := NewValue(json.RawMessage(`5000.10`))
	d, err := v.Decimal()
	require.NoError(t, err)
	assert.Equal(t, "5000.1", d.String())

	_, err = NewValue(json.RawMessage(`"not a number"`)).Decimal()
	assert.Error(t, err)
}

func TestRecordComplete(t *testing.T) {
	assert.False(t, (*Record)(nil).Complete())
	assert.False(t, (&Record{Email: StringValue("a@x.com")}).Complete())
}
