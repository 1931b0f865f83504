package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	clientHttp "github.com/MrJamesThe3rd/invoicer/internal/http/client"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
)

func newRouter(repo client.Repository, reports ledger.Repository, userID uuid.UUID) http.Handler {
	approvals := auth.NewIssuer("secret", time.Hour, auth.AudienceApproval)
	svc := client.NewService(repo, approvals, client.Settings{PaymentTerms: "Net 30"})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithBusiness(r.Context(), userID)))
		})
	})
	r.Route("/clients", clientHttp.NewHandler(svc, ledger.NewService(reports)).Routes)

	return r
}

func TestHandler_Create(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       string
		setupMock  func(repo *client.MockRepository)
		wantStatus int
		wantBody   string
	}{
		{
			name: "Created",
			body: `{"name":"Acme","email":"ap@acme.test"}`,
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), userID, "ap@acme.test").Return(nil, apperr.NotFound("Client"))
				repo.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"revived":false`,
		},
		{
			name: "Revived",
			body: `{"name":"Acme","email":"ap@acme.test"}`,
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), userID, "ap@acme.test").Return(&client.Client{
					ID:     uuid.New(),
					UserID: userID,
					Email:  "ap@acme.test",
					Status: client.StatusInactive,
				}, nil)
				repo.EXPECT().UpdateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"revived":true`,
		},
		{
			name:       "InvalidEmail",
			body:       `{"name":"Acme","email":"acme"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"field":"email","message":"must be a valid email"}`,
		},
		{
			name: "TaxIDTaken",
			body: `{"name":"Acme","email":"ap@acme.test","taxId":"27AAPFU0939F1ZV"}`,
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().FindByEmail(gomock.Any(), userID, "ap@acme.test").Return(nil, apperr.NotFound("Client"))
				repo.EXPECT().TaxIDTaken(gomock.Any(), "27AAPFU0939F1ZV", uuid.Nil).Return(true, nil)
			},
			wantStatus: http.StatusConflict,
			wantBody:   `"message":"GST / Tax ID already in use by another account"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := client.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := httptest.NewRecorder()
			newRouter(repo, ledger.NewMockRepository(ctrl), userID).
				ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_GetHidesCredentials(t *testing.T) {
	userID, id := uuid.New(), uuid.New()
	hash, token := "$2a$10$hash", "approval-token"

	ctrl := gomock.NewController(t)
	repo := client.NewMockRepository(ctrl)
	repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(&client.Client{
		ID:            id,
		UserID:        userID,
		Name:          "Acme",
		PasswordHash:  &hash,
		ApprovalToken: &token,
		IsApproved:    true,
	}, nil)

	rec := httptest.NewRecorder()
	newRouter(repo, ledger.NewMockRepository(ctrl), userID).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/"+id.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasCredentials":true`)
	assert.NotContains(t, rec.Body.String(), hash)
	assert.NotContains(t, rec.Body.String(), token)
}

func TestHandler_Delete(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	tests := []struct {
		name      string
		setupMock func(repo *client.MockRepository)
		wantBody  string
	}{
		{
			name: "NoInvoices",
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().CountInvoices(gomock.Any(), id).Return(0, nil)
				repo.EXPECT().DeleteClient(gomock.Any(), id).Return(nil)
			},
			wantBody: "Client deleted successfully",
		},
		{
			name: "HasInvoices",
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().CountInvoices(gomock.Any(), id).Return(3, nil)
				repo.EXPECT().UpdateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantBody: "Client has invoices and was deactivated instead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := client.NewMockRepository(ctrl)
			repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(&client.Client{ID: id, UserID: userID, Status: client.StatusActive}, nil)
			tt.setupMock(repo)

			rec := httptest.NewRecorder()
			newRouter(repo, ledger.NewMockRepository(ctrl), userID).
				ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clients/"+id.String(), nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_Reconcile(t *testing.T) {
	userID := uuid.New()
	hundred := decimal.NewFromInt(100)

	balanced := &ledger.Report{
		ClientID: uuid.New(),
		Stored:   ledger.Totals{Invoiced: hundred, Outstanding: hundred},
		Actual:   ledger.Totals{Invoiced: hundred, Outstanding: hundred},
	}
	drifted := &ledger.Report{
		ClientID:   uuid.New(),
		ClientName: "Acme",
		Stored:     ledger.Totals{Invoiced: hundred, Outstanding: hundred},
		Actual:     ledger.Totals{Invoiced: decimal.NewFromInt(150), Outstanding: decimal.NewFromInt(150)},
	}

	ctrl := gomock.NewController(t)
	reports := ledger.NewMockRepository(ctrl)
	reports.EXPECT().Reports(gomock.Any(), userID).Return([]*ledger.Report{balanced, drifted}, nil)

	rec := httptest.NewRecorder()
	newRouter(client.NewMockRepository(ctrl), reports, userID).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/ledger/reconcile", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Drifted []struct {
			ClientID   uuid.UUID `json:"clientId"`
			ClientName string    `json:"clientName"`
			Drift      bool      `json:"drift"`
		} `json:"drifted"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Drifted, 1)
	assert.Equal(t, drifted.ClientID, resp.Drifted[0].ClientID)
	assert.Equal(t, "Acme", resp.Drifted[0].ClientName)
	assert.True(t, resp.Drifted[0].Drift)
}
