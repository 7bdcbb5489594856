package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/repository"
)

func authStack() *AuthHandler {
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, BcryptCost: 4}
	return NewAuthHandler(cfg, &fakeUsers{}, &fakeHosts{},
		repository.NewOTPStore(nil), &countingEmail{}, &countingSMS{})
}

func TestRegisterUser_DuplicateEmailConflicts(t *testing.T) {
	h := authStack()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/register/user",
		`{"name":"Asha Rao","email":"a@example.com","phone":"+919800000001","password":"longenough"}`)
	require.NoError(t, h.RegisterUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	// same email, different phone: the unique-email index wins
	c, rec = jsonCtx(t, http.MethodPost, "/v1/auth/register/user",
		`{"name":"Asha Again","email":"a@example.com","phone":"+919800000002","password":"longenough"}`)
	require.NoError(t, h.RegisterUser(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRegisterUser_ValidationFields(t *testing.T) {
	h := authStack()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/register/user",
		`{"name":"","email":"not-an-email","phone":"","password":"short"}`)
	require.NoError(t, h.RegisterUser(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"name"`)
	assert.Contains(t, body, `"email"`)
	assert.Contains(t, body, `"phone"`)
	assert.Contains(t, body, `"password"`)
}
