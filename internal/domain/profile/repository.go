package profile

import "context"

// Repository is durable single-record persistence for the active customer
// profile. Save overwrites wholesale; there is no partial update and no
// history. Load returns apperrors.ErrNoProfile when nothing has ever been
// saved or the backing store cannot be read back.
//
// Implementations must be atomic from the caller's perspective: a Load
// concurrent with a Save observes either the old or the new record in full.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context) (*Record, error)
}
