package delivery

import "context"

// Store persists delivery outcomes.
type Store interface {
	// Append writes one outcome document. Outcomes are never updated.
	Append(ctx context.Context, o *Outcome) error
}
