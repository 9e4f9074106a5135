package billing

import "github.com/rutar-app/backend/internal/user"

// ResolveIdentity extracts the payer's email from a provider record.
//
// Priority, first non-empty wins:
//  1. the external reference — set by the app at subscription-creation time
//     to the paying user's email, so it is the most trustworthy field;
//  2. the top-level payer email on the subscription object;
//  3. the email inside the nested payer object on payment records.
//
// Cancellation events in particular tend to omit payer identity, which is why
// callers must treat ok=false as a recognized outcome (orphaned notification)
// rather than an error.
func ResolveIdentity(rec Record) (string, bool) {
	for _, candidate := range []string{rec.ExternalReference, rec.PayerEmail, rec.Payer.Email} {
		if email := user.NormalizeEmail(candidate); email != "" {
			return email, true
		}
	}
	return "", false
}
