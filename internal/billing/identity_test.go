package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rutar-app/backend/internal/billing"
)

func TestResolveIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rec       billing.Record
		wantEmail string
		wantOK    bool
	}{
		{
			name: "external reference wins over payer fields",
			rec: billing.Record{
				ExternalReference: "app-user@example.com",
				PayerEmail:        "card-holder@example.com",
				Payer:             billing.Payer{Email: "nested@example.com"},
			},
			wantEmail: "app-user@example.com",
			wantOK:    true,
		},
		{
			name: "payer email when no external reference",
			rec: billing.Record{
				PayerEmail: "card-holder@example.com",
				Payer:      billing.Payer{Email: "nested@example.com"},
			},
			wantEmail: "card-holder@example.com",
			wantOK:    true,
		},
		{
			name:      "nested payer object as last resort",
			rec:       billing.Record{Payer: billing.Payer{Email: "nested@example.com"}},
			wantEmail: "nested@example.com",
			wantOK:    true,
		},
		{
			name:   "no identity anywhere",
			rec:    billing.Record{Status: "cancelled"},
			wantOK: false,
		},
		{
			name:      "identity is trimmed and lowercased",
			rec:       billing.Record{ExternalReference: "  User@Example.COM "},
			wantEmail: "user@example.com",
			wantOK:    true,
		},
		{
			name: "blank external reference falls through",
			rec: billing.Record{
				ExternalReference: "   ",
				PayerEmail:        "card-holder@example.com",
			},
			wantEmail: "card-holder@example.com",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email, ok := billing.ResolveIdentity(tt.rec)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantEmail, email)
		})
	}
}
