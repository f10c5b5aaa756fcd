package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

// createAccountStore records the account handed to CreateAccount. The other
// Store methods are never reached by the handler under test.
type createAccountStore struct {
	storage.Store
	created *models.Account
}

func (s *createAccountStore) CreateAccount(a *models.Account) error {
	a.ID = 1
	s.created = a
	return nil
}

func newCreateAccountRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), userIDContextKey, int64(7)))
}

func TestHandleCreateAccountNormalizesType(t *testing.T) {
	store := &createAccountStore{}
	h := NewAccountHandler(store)
	rr := httptest.NewRecorder()

	// Mixed case and padding must not leak into the persisted row; the
	// account_type column only accepts the lowercase set.
	h.HandleCreateAccount(rr, newCreateAccountRequest(
		`{"account_type":" Checking ","account_name":"Everyday","institution_name":"First Bank","balance":"1250.00"}`))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, store.created)
	assert.Equal(t, "checking", store.created.AccountType)
	assert.Equal(t, int64(7), store.created.UserID)
	assert.Equal(t, "Everyday", store.created.AccountName)
}

func TestHandleCreateAccountRejectsUnknownType(t *testing.T) {
	store := &createAccountStore{}
	h := NewAccountHandler(store)
	rr := httptest.NewRecorder()

	h.HandleCreateAccount(rr, newCreateAccountRequest(
		`{"account_type":"bitcoin","account_name":"Wallet","balance":"0"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, store.created)
}
