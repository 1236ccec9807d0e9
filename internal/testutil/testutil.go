// AngelaMos | 2026
// testutil.go

// Package testutil holds helpers shared by handler and repository tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/middleware"
)

// Token builds a bearer token understood by Guards: "<id>:<role>".
func Token(userID int64, role string) string {
	return fmt.Sprintf("%d:%s", userID, role)
}

// Guards authenticates tokens made by Token without any signing.
func Guards() middleware.Guards {
	return middleware.NewGuards(middleware.TokenVerifierFunc(
		func(_ context.Context, token string) (*middleware.AccessTokenClaims, error) {
			id, role, ok := strings.Cut(token, ":")
			if !ok {
				return nil, core.ErrTokenInvalid
			}
			userID, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return nil, core.ErrTokenInvalid
			}
			return &middleware.AccessTokenClaims{UserID: userID, Role: role}, nil
		},
	))
}

// Do sends a JSON request through h. An empty token sends no header.
func Do(
	t *testing.T,
	h http.Handler,
	method, path, token string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Data decodes the envelope's data field into T.
func Data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.True(t, body.Success, "expected a success envelope")
	return body.Data
}

func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body core.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

// MockDB returns an sqlx handle backed by sqlmock. Expectations are checked
// when the test ends.
func MockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return sqlx.NewDb(db, "pgx"), mock
}
