package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"standard", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"case insensitive scheme", "bearer abc", "abc", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic dXNlcjpwdw==", "", false},
		{"scheme only", "Bearer ", "", false},
		{"no scheme", "abc.def.ghi", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRequireAuth_NoHeader(t *testing.T) {
	s, _ := newTestServer(t, &stubAuth{verifySubject: "u1"}, &stubTodos{})

	rec := doJSON(t, s, http.MethodGet, "/api/v1/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, &stubAuth{}, &stubTodos{})

	rec := doJSON(t, s, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	s, mock := newTestServer(t, &stubAuth{}, &stubTodos{})
	mock.ExpectPing()

	rec := doJSON(t, s, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_DatabaseDown(t *testing.T) {
	s, mock := newTestServer(t, &stubAuth{}, &stubTodos{})
	mock.ExpectPing().WillReturnError(errBoom)

	rec := doJSON(t, s, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
