package product_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	productHttp "github.com/MrJamesThe3rd/invoicer/internal/http/product"
	"github.com/MrJamesThe3rd/invoicer/internal/product"
	"github.com/MrJamesThe3rd/invoicer/internal/product/csvimport"
)

func newRouter(repo product.Repository, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithBusiness(r.Context(), userID)))
		})
	})
	r.Route("/products", productHttp.NewHandler(product.NewService(repo, csvimport.NewParser())).Routes)

	return r
}

func upload(t *testing.T, field, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(field, "products.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/products/import", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	return r
}

func TestHandler_Import(t *testing.T) {
	userID := uuid.New()

	t.Run("PartialSuccess", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := product.NewMockRepository(ctrl)
		repo.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(nil)

		rec := httptest.NewRecorder()
		newRouter(repo, userID).ServeHTTP(rec, upload(t, "file", "name,rate\nHosting,1200\nDesign,abc\n"))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Imported int `json:"imported"`
			Failed   []struct {
				Line    int    `json:"line"`
				Name    string `json:"name"`
				Message string `json:"message"`
			} `json:"failed"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

		assert.Equal(t, 1, resp.Imported)
		require.Len(t, resp.Failed, 1)
		assert.Equal(t, 3, resp.Failed[0].Line)
		assert.Equal(t, "Design", resp.Failed[0].Name)
		assert.Equal(t, `invalid rate "abc"`, resp.Failed[0].Message)
	})

	t.Run("MissingFile", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		rec := httptest.NewRecorder()
		newRouter(product.NewMockRepository(ctrl), userID).ServeHTTP(rec, upload(t, "attachment", "name\nHosting\n"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "File field is required")
	})

	t.Run("NotACatalogue", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		rec := httptest.NewRecorder()
		newRouter(product.NewMockRepository(ctrl), userID).ServeHTTP(rec, upload(t, "file", "just,some\nwords,here\n"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Could not read file")
	})
}

func TestHandler_List(t *testing.T) {
	userID := uuid.New()

	ctrl := gomock.NewController(t)
	repo := product.NewMockRepository(ctrl)

	rec := httptest.NewRecorder()
	newRouter(repo, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?active=maybe", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
