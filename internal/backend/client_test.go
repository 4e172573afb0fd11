package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, LoginPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.User == "alice" && body.Password == "secret" {
			_ = json.NewEncoder(w).Encode(loginResponse{Token: "tok-123"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)

	token, err := client.Authenticate(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	_, err = client.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestClient_Authenticate_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Authenticate(context.Background(), "alice", "secret")
	assert.ErrorIs(t, err, domain.ErrBackendRejected)
}

func TestClient_ListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UsersPath, r.URL.Path)
		_, _ = w.Write([]byte(`["alice","bob"]`))
	}))
	defer srv.Close()

	users, err := NewClient(srv.URL, time.Second).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, users)
}

func TestClient_FetchOutstanding_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, OutstandingPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"Acme":["bill1","bill2"],"Globex":[]}`))
	}))
	defer srv.Close()

	bills, err := NewClient(srv.URL, time.Second).FetchOutstanding(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"bill1", "bill2"}, bills["Acme"])
	assert.Contains(t, bills, "Globex")
}

func TestClient_SubmitAllocation(t *testing.T) {
	var received domain.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, SubmitPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	submission := domain.Submission{
		Party:         "Acme",
		DeclaredTotal: decimal.NewFromInt(1000),
		PaymentType:   domain.PaymentTypeCheque,
		PaymentDate:   "2026-10-16",
		Rows: []domain.AllocationLine{
			{BillID: "bill1", Amount: decimal.NewFromInt(500)},
			{BillID: "bill2", Amount: decimal.NewFromInt(505)},
		},
	}

	err := NewClient(srv.URL, time.Second).SubmitAllocation(context.Background(), "tok", submission, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", received.Party)
	require.Len(t, received.Rows, 2)
	assert.True(t, received.Rows[1].Amount.Equal(decimal.NewFromInt(505)))
}

func TestClient_SubmitAllocation_AmountsAreDecimalStrings(t *testing.T) {
	var raw map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	submission := domain.Submission{
		Party:         "Acme",
		DeclaredTotal: decimal.RequireFromString("1000.10"),
		PaymentType:   domain.PaymentTypeNEFT,
		PaymentDate:   "2026-10-16",
		Rows: []domain.AllocationLine{
			{BillID: "bill1", Amount: decimal.RequireFromString("0.10")},
			{BillID: "bill2", Amount: decimal.NewFromInt(1000)},
		},
	}

	err := NewClient(srv.URL, time.Second).SubmitAllocation(context.Background(), "tok", submission, "key-1")
	require.NoError(t, err)

	assert.Equal(t, "1000.1", raw["declaredTotal"])
	rows, ok := raw["rows"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, "0.1", rows[0].(map[string]interface{})["amount"])
	assert.Equal(t, "1000", rows[1].(map[string]interface{})["amount"])
}

func TestClient_SubmitAllocation_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("bill already settled"))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).SubmitAllocation(context.Background(), "tok", domain.Submission{}, "")

	assert.ErrorIs(t, err, domain.ErrBackendRejected)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Status)
	assert.Equal(t, "bill already settled", statusErr.Detail)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).ListUsers(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).ListUsers(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
