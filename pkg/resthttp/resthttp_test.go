package resthttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":100102,"msg":"position not found"}`))
			return
		}

		_, _ = w.Write([]byte(`{"price":"1.5"}`))
	}))
	defer srv.Close()

	var resp struct {
		Price string `json:"price"`
	}

	status, err := Execute(Request(context.Background()), "get", srv.URL+"/ok", nil, &resp)
	require.Nil(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1.5", resp.Price)

	status, err = Execute(Request(context.Background()), "get", srv.URL+"/fail", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 100102, e.Code)
	assert.Equal(t, "position not found", e.Msg)
}
