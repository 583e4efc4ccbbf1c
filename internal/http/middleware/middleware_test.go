package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/platform/ctxutil"
	"github.com/quildacademy/quild-backend/internal/platform/identity"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type fakeAuth struct{}

func (fakeAuth) Authenticate(token string) (*ctxutil.RequestData, error) {
	if token != "good" {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, "auth", "invalid session", nil)
	}
	return &ctxutil.RequestData{ExternalID: "user_ok", SessionID: "sess"}, nil
}

type fakeUsers struct {
	id  uuid.UUID
	err error
}

func (f fakeUsers) EnsureUser(context.Context, string) (*types.User, error) { return nil, errors.New("unused") }
func (f fakeUsers) EnsureUserWithFallback(_ context.Context, ext string) (*types.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.User{ID: f.id, ExternalID: ext}, nil
}
func (f fakeUsers) UpsertProfile(context.Context, identity.Profile) (*types.User, error) {
	return nil, errors.New("unused")
}
func (f fakeUsers) GetMe(context.Context) (*types.User, error) { return nil, errors.New("unused") }

func newAuthRouter(users fakeUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), fakeAuth{}, users)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/who", am.RequireAuth(), am.EnsureUser(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ext": rd.ExternalID, "user": rd.UserID.String()})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	id := uuid.New()
	r := newAuthRouter(fakeUsers{id: id})

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"bad bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) }, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), id.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestEnsureUserFailure(t *testing.T) {
	r := newAuthRouter(fakeUsers{err: errors.New("db down")})
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAttachTraceContextKeepsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.Nop()))
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestAttachTraceContextReplacesUnsafeIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.TraceID)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "evil\"id with spaces")
	req.Header.Set(HeaderTraceID, "trace-abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "trace-abc", rec.Body.String())
	assert.Equal(t, "trace-abc", rec.Header().Get(HeaderTraceID))
	reqID := rec.Header().Get(HeaderRequestID)
	assert.NotEqual(t, "evil\"id with spaces", reqID)
	_, err := uuid.Parse(reqID)
	assert.NoError(t, err, "unsafe request id is replaced with a fresh uuid")
}
