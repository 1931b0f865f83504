package client_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newService(repo client.Repository) *client.Service {
	approvals := auth.NewIssuer("secret", 7*24*time.Hour, auth.AudienceApproval)

	return client.NewService(repo, approvals, client.Settings{
		PaymentTerms: "Net 30",
		PortalURL:    "https://portal.test/",
		Now:          func() time.Time { return now },
	})
}

func hashed(t *testing.T, password string) *string {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &hash
}

func TestService_Create(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name      string
		params    client.CreateParams
		setupMock func(repo *client.MockRepository)
		wantErr   error
		verify    func(t *testing.T, created *client.Created)
	}

	tests := []testCase{
		{
			name:   "New",
			params: client.CreateParams{Name: "Acme", Email: "AP@Acme.test", TaxID: "27aapfu0939f1zv"},
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), userID, "ap@acme.test").Return(nil, apperr.NotFound("Client"))
				repo.EXPECT().TaxIDTaken(gomock.Any(), "27AAPFU0939F1ZV", uuid.Nil).Return(false, nil)
				repo.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, created *client.Created) {
				assert.False(t, created.Revived)
				assert.Equal(t, "ap@acme.test", created.Client.Email)
				assert.Equal(t, "Net 30", created.Client.PaymentTerms)
				assert.Equal(t, client.StatusActive, created.Client.Status)
				assert.Equal(t, "27AAPFU0939F1ZV", *created.Client.TaxID)
				assert.False(t, created.Client.IsApproved)
			},
		},
		{
			name:   "RevivesArchived",
			params: client.CreateParams{Name: "Acme Ltd", Email: "ap@acme.test", Phone: "555"},
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), userID, "ap@acme.test").Return(&client.Client{
					ID:     uuid.New(),
					UserID: userID,
					Name:   "Acme",
					Email:  "ap@acme.test",
					Status: client.StatusInactive,
				}, nil)
				repo.EXPECT().UpdateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, created *client.Created) {
				assert.True(t, created.Revived)
				assert.Equal(t, client.StatusActive, created.Client.Status)
				assert.Equal(t, "Acme Ltd", created.Client.Name)
				assert.Equal(t, "555", created.Client.Phone)
			},
		},
		{
			name:   "GeneratesPassword",
			params: client.CreateParams{Name: "Acme", Email: "ap@acme.test", CreateCredentials: true},
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), userID, "ap@acme.test").Return(nil, apperr.NotFound("Client"))
				repo.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, created *client.Created) {
				require.Len(t, created.Password, 8)
				assert.True(t, created.Client.IsApproved)
				require.NotNil(t, created.Client.PasswordHash)
				assert.True(t, auth.CheckPassword(*created.Client.PasswordHash, created.Password))
			},
		},
		{
			name:   "TaxIDTaken",
			params: client.CreateParams{Name: "Acme", Email: "ap@acme.test", TaxID: "27AAPFU0939F1ZV"},
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), userID, "ap@acme.test").Return(nil, apperr.NotFound("Client"))
				repo.EXPECT().TaxIDTaken(gomock.Any(), "27AAPFU0939F1ZV", uuid.Nil).Return(true, nil)
			},
			wantErr: client.ErrTaxIDTaken,
		},
		{
			name:    "MissingName",
			params:  client.CreateParams{Email: "ap@acme.test"},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := client.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			created, err := newService(repo).Create(context.Background(), userID, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.verify(t, created)
		})
	}
}

func TestService_Update(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	stored := func() *client.Client {
		return &client.Client{ID: id, UserID: userID, Name: "Acme", Email: "ap@acme.test", Status: client.StatusActive}
	}

	t.Run("EmailTaken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(stored(), nil)
		repo.EXPECT().FindByEmail(gomock.Any(), userID, "billing@acme.test").Return(&client.Client{ID: uuid.New()}, nil)

		_, err := newService(repo).Update(context.Background(), userID, id, client.UpdateParams{Email: ptr("Billing@acme.test")})
		assert.ErrorIs(t, err, client.ErrEmailTaken)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("AllowListedFields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(stored(), nil)
		repo.EXPECT().UpdateClient(gomock.Any(), gomock.Any()).Return(nil)

		c, err := newService(repo).Update(context.Background(), userID, id, client.UpdateParams{
			Company: ptr(" Acme Corp "),
			Status:  ptr("inactive"),
			TaxID:   ptr(""),
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", c.Company)
		assert.Equal(t, client.StatusInactive, c.Status)
		assert.Nil(t, c.TaxID)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(stored(), nil)

		_, err := newService(repo).Update(context.Background(), userID, id, client.UpdateParams{Status: ptr("vip")})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestService_Archive(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	t.Run("DeletesWithoutInvoices", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(&client.Client{ID: id}, nil)
		repo.EXPECT().CountInvoices(gomock.Any(), id).Return(0, nil)
		repo.EXPECT().DeleteClient(gomock.Any(), id).Return(nil)

		deleted, err := newService(repo).Archive(context.Background(), userID, id)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("DeactivatesWithInvoices", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		hash := "hash"
		repo := client.NewMockRepository(ctrl)
		repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(&client.Client{
			ID: id, Status: client.StatusActive, IsApproved: true, PasswordHash: &hash,
		}, nil)
		repo.EXPECT().CountInvoices(gomock.Any(), id).Return(2, nil)
		repo.EXPECT().
			UpdateClient(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *client.Client) error {
				assert.Equal(t, client.StatusInactive, c.Status)
				assert.False(t, c.IsApproved)
				assert.Nil(t, c.PasswordHash)

				return nil
			})

		deleted, err := newService(repo).Archive(context.Background(), userID, id)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestService_InviteAndActivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID, id := uuid.New(), uuid.New()
	stored := &client.Client{ID: id, UserID: userID, Email: "ap@acme.test", Status: client.StatusActive}

	repo := client.NewMockRepository(ctrl)
	repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(stored, nil)
	repo.EXPECT().GetClientByID(gomock.Any(), id).Return(stored, nil).Times(2)
	repo.EXPECT().UpdateClient(gomock.Any(), stored).Return(nil).Times(2)

	svc := newService(repo)

	link, err := svc.Invite(context.Background(), userID, id)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://portal.test/client/approve?token="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)

	token := parsed.Query().Get("token")
	require.NotNil(t, stored.ApprovalToken)
	assert.Equal(t, *stored.ApprovalToken, token)

	err = svc.Activate(context.Background(), token, "abc")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, svc.Activate(context.Background(), token, "secret1"))
	assert.True(t, stored.IsApproved)
	assert.Nil(t, stored.ApprovalToken)
	assert.True(t, auth.CheckPassword(*stored.PasswordHash, "secret1"))

	err = svc.Activate(context.Background(), token, "secret2")
	assert.ErrorIs(t, err, client.ErrInvalidApproval)
}

func TestService_Login(t *testing.T) {
	const email = "ap@acme.test"

	type testCase struct {
		name       string
		candidates func(t *testing.T) []*client.Client
		wantErr    error
		wantIndex  int
	}

	tests := []testCase{
		{
			name: "PrefersApprovedMatch",
			candidates: func(t *testing.T) []*client.Client {
				return []*client.Client{
					{ID: uuid.New(), PasswordHash: hashed(t, "secret1")},
					{ID: uuid.New(), PasswordHash: hashed(t, "other1"), IsApproved: true},
					{ID: uuid.New(), PasswordHash: hashed(t, "secret1"), IsApproved: true},
				}
			},
			wantIndex: 2,
		},
		{
			name: "MatchedButNotApproved",
			candidates: func(t *testing.T) []*client.Client {
				return []*client.Client{
					{ID: uuid.New(), PasswordHash: hashed(t, "secret1")},
					{ID: uuid.New()},
				}
			},
			wantErr: client.ErrNotActivated,
		},
		{
			name: "NoMatch",
			candidates: func(t *testing.T) []*client.Client {
				return []*client.Client{{ID: uuid.New(), PasswordHash: hashed(t, "other1"), IsApproved: true}}
			},
			wantErr: client.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			candidates := tt.candidates(t)

			repo := client.NewMockRepository(ctrl)
			repo.EXPECT().FindAllByEmail(gomock.Any(), email).Return(candidates, nil)

			if tt.wantErr == nil {
				repo.EXPECT().TouchLogin(gomock.Any(), candidates[tt.wantIndex].ID, now).Return(nil)
			}

			c, err := newService(repo).Login(context.Background(), " AP@acme.test", "secret1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, candidates[tt.wantIndex].ID, c.ID)
			assert.Equal(t, now, *c.LastLogin)
		})
	}
}

func TestService_Authorize(t *testing.T) {
	id := uuid.New()
	hash := "hash"

	tests := []struct {
		name    string
		stored  *client.Client
		err     error
		wantErr error
	}{
		{name: "Approved", stored: &client.Client{ID: id, Status: client.StatusActive, IsApproved: true, PasswordHash: &hash}},
		{name: "NotApproved", stored: &client.Client{ID: id, Status: client.StatusActive}, wantErr: client.ErrInvalidSession},
		{name: "Gone", err: apperr.NotFound("Client"), wantErr: client.ErrInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := client.NewMockRepository(ctrl)
			repo.EXPECT().GetClientByID(gomock.Any(), id).Return(tt.stored, tt.err)

			_, err := newService(repo).Authorize(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)

				return
			}

			require.NoError(t, err)
		})
	}
}
