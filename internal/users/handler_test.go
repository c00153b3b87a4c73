package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/traindiary/backend/pkg"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type loginServiceMock struct {
	sessions map[string]int
	loginErr error
}

func newLoginServiceMock() *loginServiceMock {
	return &loginServiceMock{sessions: make(map[string]int)}
}

func (l *loginServiceMock) Login(_ context.Context, userID int, _ time.Time) (string, error) {
	if l.loginErr != nil {
		return "", l.loginErr
	}
	token := "test-token"
	l.sessions[token] = userID
	return token, nil
}

func (l *loginServiceMock) Logout(_ context.Context, token string) error {
	if _, ok := l.sessions[token]; !ok {
		return errors.New("session not found")
	}
	delete(l.sessions, token)
	return nil
}

func registerTestUser(t *testing.T, handler *Handler, username, password string) User {
	t.Helper()

	reqBody, err := json.Marshal(RegisterRequest{
		Username: username,
		Email:    username + "@traindiary.app",
		Password: password,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/a/register", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var user User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	return user
}

func TestHandler_Register(t *testing.T) {
	repo := NewMockUsersRepo()
	handler := NewHandler(repo, newLoginServiceMock())

	user := registerTestUser(t, handler, "mila", "s3cr3t")
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "mila", user.Username)

	stored, err := repo.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cr3t", stored.PasswordHash)
	assert.True(t, pkg.CheckPasswordHash("s3cr3t", stored.PasswordHash))
}

func TestHandler_Register_MissingFields(t *testing.T) {
	handler := NewHandler(NewMockUsersRepo(), newLoginServiceMock())

	reqBody, err := json.Marshal(RegisterRequest{Username: "mila"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/a/register", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Login(t *testing.T) {
	login := newLoginServiceMock()
	handler := NewHandler(NewMockUsersRepo(), login)
	user := registerTestUser(t, handler, "mila", "s3cr3t")

	reqBody, err := json.Marshal(LoginRequest{Username: "mila", Password: "s3cr3t"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/a/login", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var loginResp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.Equal(t, "test-token", loginResp.Token)
	assert.Equal(t, user.ID, loginResp.UserID)
	assert.Equal(t, user.ID, login.sessions["test-token"])
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	handler := NewHandler(NewMockUsersRepo(), newLoginServiceMock())
	registerTestUser(t, handler, "mila", "s3cr3t")

	testCases := []struct {
		name string
		req  LoginRequest
	}{
		{name: "wrong password", req: LoginRequest{Username: "mila", Password: "nope"}},
		{name: "unknown user", req: LoginRequest{Username: "ghost", Password: "s3cr3t"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reqBody, err := json.Marshal(tc.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/a/login", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			handler.HandleLogin(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestHandler_GetUser(t *testing.T) {
	handler := NewHandler(NewMockUsersRepo(), newLoginServiceMock())
	user := registerTestUser(t, handler, "mila", "s3cr3t")

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	handler.HandleGet(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var gotUser User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gotUser))
	assert.Equal(t, user.Username, gotUser.Username)
	// the hash never leaves the service
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestHandler_GetUser_NotFound(t *testing.T) {
	handler := NewHandler(NewMockUsersRepo(), newLoginServiceMock())

	req := httptest.NewRequest(http.MethodGet, "/users/77", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "77"})
	rr := httptest.NewRecorder()
	handler.HandleGet(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_DeleteUser(t *testing.T) {
	repo := NewMockUsersRepo()
	handler := NewHandler(repo, newLoginServiceMock())
	user := registerTestUser(t, handler, "mila", "s3cr3t")

	req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	handler.HandleDelete(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	_, err := repo.Get(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
