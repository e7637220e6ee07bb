package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/router/tokens"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetHandler(discard.Default)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(AttachRequestID(), CaptureErrors())
	r.GET("/:plan", append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, ExtractUser(c))
	})...)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAuthorization(t *testing.T) {
	c, err := config.NewAtPath("")
	require.NoError(t, err)
	c.Token = "middleware-secret"
	config.Set(c)

	r := newEngine(RequireAuthorization())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, errdefs.CodeUnauthorized, body.Code)
	assert.Equal(t, w.Header().Get("X-Request-Id"), body.RequestID)

	token, err := tokens.Issue("user-7", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-7", w.Body.String())
}

func TestRequireUUIDParams(t *testing.T) {
	r := newEngine(RequireUUIDParams("plan"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errdefs.CodeNotFound, decodeError(t, w).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/1b4e28ba-2fa1-41d2-883f-0016d3cca427", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	r := newEngine(NewRateLimiter(0.001, 2).Handler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, errdefs.CodeRateLimited, decodeError(t, w).Code)
}

func TestUncodedErrorsAreHidden(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		CaptureAndAbort(c, assert.AnError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, errdefs.CodeOperationFailed, body.Code)
	assert.NotContains(t, body.Error, assert.AnError.Error())
}
