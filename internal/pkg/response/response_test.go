package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

func failWith(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Fail(c, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestFailClassified(t *testing.T) {
	status, body := failWith(t, fmt.Errorf("login: %w", appErr.ErrNotVerified))
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Please verify your email first", body["detail"])
	require.Equal(t, "not_verified", body["error"].(map[string]interface{})["code"])
}

func TestFailHidesInternals(t *testing.T) {
	status, body := failWith(t, errors.New("pq: connection refused at 10.0.0.3"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "internal error", body["detail"])

	status, _ = failWith(t, fmt.Errorf("row: %w", appErr.ErrCorrupt))
	require.Equal(t, http.StatusInternalServerError, status)
}

func TestFailTransient(t *testing.T) {
	status, body := failWith(t, appErr.Transient("send mail", errors.New("dial tcp: timeout")))
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "unavailable", body["error"].(map[string]interface{})["code"])
}
