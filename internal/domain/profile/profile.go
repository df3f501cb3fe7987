package profile

import (
	"encoding/json"

	"voicecollect/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// RequiredFields is the declared order of the customer submission schema.
// Validation failures report missing fields in exactly this order.
var RequiredFields = []string{
	"email",
	"contact",
	"loan",
	"balance",
	"installment",
	"nextInstallmentDate",
	"currentDateTime",
}

// Value is a JSON scalar captured verbatim from the submission. Amounts and
// dates keep the exact bytes the client sent, so "500", 500 and 500.00 all
// round-trip without reformatting.
type Value struct {
	raw json.RawMessage
}

func NewValue(raw json.RawMessage) Value {
	return Value{raw: append(json.RawMessage(nil), raw...)}
}

// StringValue wraps a plain string as a JSON string value.
func StringValue(s string) Value {
	b, _ := json.Marshal(s)
	return Value{raw: b}
}

// Present reports whether the submission carried this field at all.
func (v Value) Present() bool {
	return len(v.raw) > 0
}

// Text returns the display form of the value: JSON strings are unquoted,
// every other scalar is returned exactly as submitted.
func (v Value) Text() string {
	if len(v.raw) == 0 {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

// Decimal parses the value as an exact decimal amount.
func (v Value) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(v.Text())
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	v.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Record is the single persisted customer profile. All seven fields are
// required; a Record is only ever constructed from a submission that passed
// CheckRequired, or unmarshalled from a store that only holds such records.
type Record struct {
	Email               Value `json:"email"`
	Contact             Value `json:"contact"`
	Loan                Value `json:"loan"`
	Balance             Value `json:"balance"`
	Installment         Value `json:"installment"`
	NextInstallmentDate Value `json:"nextInstallmentDate"`
	CurrentDateTime     Value `json:"currentDateTime"`
}

// CheckRequired validates presence of the seven schema fields. It performs
// no type coercion and tolerates extra keys. It is total: a nil map is
// classified as missing everything, never an internal error.
func CheckRequired(fields map[string]json.RawMessage) error {
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFieldsError(missing)
	}
	return nil
}

// FromSubmission builds a Record from a validated submission. Extra keys
// are discarded; the file layout holds exactly the schema fields.
func FromSubmission(fields map[string]json.RawMessage) (*Record, error) {
	if err := CheckRequired(fields); err != nil {
		return nil, err
	}
	return &Record{
		Email:               NewValue(fields["email"]),
		Contact:             NewValue(fields["contact"]),
		Loan:                NewValue(fields["loan"]),
		Balance:             NewValue(fields["balance"]),
		Installment:         NewValue(fields["installment"]),
		NextInstallmentDate: NewValue(fields["nextInstallmentDate"]),
		CurrentDateTime:     NewValue(fields["currentDateTime"]),
	}, nil
}

// Complete reports whether every schema field is present. Stored records
// are complete by construction; this guards against hand-edited files.
func (r *Record) Complete() bool {
	if r == nil {
		return false
	}
	for _, v := range []Value{
		r.Email, r.Contact, r.Loan, r.Balance,
		r.Installment, r.NextInstallmentDate, r.CurrentDateTime,
	} {
		if !v.Present() {
			return false
		}
	}
	return true
}
