package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
	"github.com/xpense-dev/xpense/internal/payload"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL + "/", Token: "secret"})
}

func expenseRequest() payload.Request {
	return payload.Assemble(model.Draft{
		Mode:            model.ModeStandard,
		EntryType:       model.EntryExpense,
		Date:            time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Account:         "1",
		Amount:          "500",
		ExpenseCategory: "3",
	})
}

func TestSubmitPostsJSON(t *testing.T) {
	var gotPath, gotAuth, gotKey, gotType string
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		gotType = r.Header.Get("Content-Type")
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 42}`)
	})

	err := c.Submit(context.Background(), expenseRequest(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, "/transactions/", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "2024-01-01T10:00", got["date"])
}

func TestSubmitMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "2024-01-01T10:00", r.FormValue("date"))
		assert.Contains(t, r.FormValue("accounts"), `"expense_category":"3"`)
		_, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "r.jpg", hdr.Filename)
		w.WriteHeader(http.StatusCreated)
	})

	req := expenseRequest()
	req.Attachment = &model.Attachment{Name: "r.jpg", Data: []byte("jpeg")}
	require.NoError(t, c.Submit(context.Background(), req, ""))
}

func TestSubmitServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"accounts": [{"splits": [{"amount": ["Ensure this value is greater than 0."]}]}]}`)
	})

	err := c.Submit(context.Background(), expenseRequest(), "")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "accounts.0.splits.0.amount: Ensure this value is greater than 0.", apiErr.Message)
}

func TestSubmitNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(ClientConfig{BaseURL: srv.URL})

	err := c.Submit(context.Background(), expenseRequest(), "")
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestListAccountsBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id": 1, "name": "Cash", "balance": "120.50"}, {"id": "2", "name": "Bank", "balance": 0}]`)
	})

	accts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Equal(t, id.ID("1"), accts[0].ID)
	assert.Equal(t, "120.5", accts[0].Balance.String())
	assert.Equal(t, id.ID("2"), accts[1].ID)
}

func TestListLoansPaginated(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = io.WriteString(w, `{"next": null, "results": [{"id": 2, "contact": 5, "type": "LENT", "is_closed": true}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"next": "`+srvURL+`/loans/?page=2", "results": [{"id": 1, "contact": 5, "type": "TAKEN"}]}`)
	}))
	defer srv.Close()
	srvURL = srv.URL

	loans, err := NewClient(ClientConfig{BaseURL: srv.URL}).ListLoans(context.Background())
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, model.LoanTaken, loans[0].Type)
	assert.True(t, loans[1].IsClosed)
}

func TestListLoansRelativeNext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"next": null, "results": [{"id": 2, "contact": 5, "type": "LENT"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"next": "/loans/?page=2", "results": [{"id": 1, "contact": 5, "type": "TAKEN"}]}`)
	})

	loans, err := c.ListLoans(context.Background())
	require.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestListRefusesNextOnOtherHost(t *testing.T) {
	var foreignHits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits.Add(1)
		_, _ = io.WriteString(w, `{"next": null, "results": []}`)
	}))
	defer foreign.Close()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"next": "`+foreign.URL+`/loans/?page=2", "results": [{"id": 1, "contact": 5, "type": "TAKEN"}]}`)
	})

	_, err := c.ListLoans(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaves")
	assert.Zero(t, foreignHits.Load(), "token must not be sent to another host")
}

func TestListError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail": "Invalid token."}`)
	})

	_, err := c.ListContacts(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid token.", apiErr.Message)
	assert.True(t, strings.HasPrefix(err.Error(), "listing /contacts/"))
}

func TestFlattenMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail": "Not found."}`, "Not found."},
		{"non field", `{"non_field_errors": ["Accounts must differ."]}`, "Accounts must differ."},
		{"field list", `{"amount": ["Required.", "Must be positive."]}`, "amount: Required. Must be positive."},
		{"sorted keys", `{"note": "Too long.", "amount": ["Required."]}`, "amount: Required.; note: Too long."},
		{"nested", `{"accounts": {"0": {"loan": ["Closed."]}}}`, "accounts.0.loan: Closed."},
		{"plain text", "Bad Gateway\n", "Bad Gateway"},
		{"bare list", `["first", "second"]`, "first second"},
		{"empty", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenMessage([]byte(tt.body)))
		})
	}
}

func TestEmptyErrorBodyUsesStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := c.Submit(context.Background(), expenseRequest(), "")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}
