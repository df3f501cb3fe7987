package dto

import (
	"voicecollect/internal/domain/profile"
)

type TokenRequest struct {
	Username string `json:"username"`
}

// MessageResponse is the success envelope for operations that only
// acknowledge, matching the submission API's wire contract.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse reports a rejected submission. MissingFields
// preserves the declared required-field order.
type ValidationErrorResponse struct {
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields"`
}

// InternalErrorResponse carries a short diagnostic alongside the generic
// message. Error never includes stored field values.
type InternalErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ProfileResponse returns the stored record verbatim plus the derived
// repayment figures when the amounts parse as decimals.
type ProfileResponse struct {
	Customer  *profile.Record           `json:"customer"`
	Repayment *profile.RepaymentSummary `json:"repayment,omitempty"`
}

func NewProfileResponse(rec *profile.Record, summary *profile.RepaymentSummary) ProfileResponse {
	return ProfileResponse{
		Customer:  rec,
		Repayment: summary,
	}
}
