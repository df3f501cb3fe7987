package event

import (
	"context"
	"time"
)

// ProfilePayload mirrors the persisted customer record in display form.
type ProfilePayload struct {
	Email               string `json:"email"`
	Contact             string `json:"contact"`
	Loan                string `json:"loan"`
	Balance             string `json:"balance"`
	Installment         string `json:"installment"`
	NextInstallmentDate string `json:"nextInstallmentDate"`
	CurrentDateTime     string `json:"currentDateTime"`
}

// ProfileUpdatedEvent is published after each successful profile save.
// Because the store is last-write-wins, consumers only ever need the
// latest event.
type ProfileUpdatedEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Payload   ProfilePayload `json:"payload"`
}

type Publisher interface {
	PublishProfileUpdated(ctx context.Context, event ProfileUpdatedEvent) error
}
