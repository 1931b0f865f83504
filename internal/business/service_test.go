package business_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/business"
)

var defaults = business.Defaults{Prefix: "INV", Currency: "INR", PaymentTerms: "Net 30"}

func TestService_Register(t *testing.T) {
	type testCase struct {
		name      string
		params    business.RegisterParams
		setupMock func(repo *business.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: business.RegisterParams{Name: "Ana", Email: " Ana@Example.com ", Password: "secret1"},
			setupMock: func(repo *business.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(nil, apperr.NotFound("User"))
				repo.EXPECT().
					CreateBusiness(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *business.Business) error {
						assert.Equal(t, "INV", b.InvoicePrefix)
						assert.Equal(t, "INR", b.Currency)
						assert.True(t, auth.CheckPassword(b.PasswordHash, "secret1"))

						return nil
					})
			},
		},
		{
			name:    "ShortPassword",
			params:  business.RegisterParams{Name: "Ana", Email: "ana@example.com", Password: "123"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "EmailTaken",
			params: business.RegisterParams{Name: "Ana", Email: "ana@example.com", Password: "secret1"},
			setupMock: func(repo *business.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(&business.Business{}, nil)
			},
			wantErr: business.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := business.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			b, err := business.NewService(repo, defaults).Register(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ana@example.com", b.Email)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)

	stored := &business.Business{ID: uuid.New(), Email: "ana@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		email    string
		password string
		found    *business.Business
		wantErr  error
	}{
		{name: "Success", email: "ANA@example.com", password: "secret1", found: stored},
		{name: "WrongPassword", email: "ana@example.com", password: "nope", found: stored, wantErr: business.ErrInvalidCredentials},
		{name: "UnknownEmail", email: "bob@example.com", password: "secret1", wantErr: business.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := business.NewMockRepository(ctrl)
			if tt.found != nil {
				repo.EXPECT().FindByEmail(gomock.Any(), tt.found.Email).Return(tt.found, nil)
			} else {
				repo.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, apperr.NotFound("User"))
			}

			b, err := business.NewService(repo, defaults).Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, apperr.ErrValidation)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, stored.ID, b.ID)
		})
	}
}

func TestService_UpdateSettings(t *testing.T) {
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := business.NewMockRepository(ctrl)
		repo.EXPECT().GetBusiness(gomock.Any(), id).Return(&business.Business{ID: id, InvoicePrefix: "INV", Currency: "INR"}, nil)
		repo.EXPECT().UpdateSettings(gomock.Any(), gomock.Any()).Return(nil)

		b, err := business.NewService(repo, defaults).UpdateSettings(context.Background(), id, business.SettingsParams{
			InvoicePrefix: ptr("ACME"),
			Currency:      ptr("usd"),
		})
		require.NoError(t, err)
		assert.Equal(t, "ACME", b.InvoicePrefix)
		assert.Equal(t, "USD", b.Currency)
	})

	t.Run("InvalidCurrency", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := business.NewMockRepository(ctrl)
		repo.EXPECT().GetBusiness(gomock.Any(), id).Return(&business.Business{ID: id}, nil)

		_, err := business.NewService(repo, defaults).UpdateSettings(context.Background(), id, business.SettingsParams{
			Currency: ptr("US"),
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

// ptr returns a pointer to a copy of v.
func ptr[T any](v T) *T { return &v }
