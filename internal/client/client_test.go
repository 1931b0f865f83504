package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
)

func TestNormalizeTaxID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *string
		wantErr bool
	}{
		{name: "Valid", raw: "27aapfu0939f1zv", want: ptr("27AAPFU0939F1ZV")},
		{name: "StripsSpaces", raw: " 27AAP FU093 9F1ZV ", want: ptr("27AAPFU0939F1ZV")},
		{name: "Empty", raw: "   ", want: nil},
		{name: "TooShort", raw: "27AAPFU0939", wantErr: true},
		{name: "Symbols", raw: "27AAPFU0939F1Z-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.NormalizeTaxID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_PortalEnabled(t *testing.T) {
	hash := "hash"

	c := &client.Client{Status: client.StatusActive, IsApproved: true, PasswordHash: &hash}
	assert.True(t, c.PortalEnabled())

	c.Status = client.StatusInactive
	assert.False(t, c.PortalEnabled())

	c.Status = client.StatusActive
	c.ClearCredentials()
	assert.False(t, c.PortalEnabled())
	assert.Nil(t, c.PasswordHash)
	assert.Nil(t, c.ApprovalToken)
}

// ptr returns a pointer to a copy of v.
func ptr[T any](v T) *T { return &v }
