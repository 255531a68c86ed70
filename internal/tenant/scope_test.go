package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFromContext_MissingActor(t *testing.T) {
	c, _ := newContext(t)

	_, ok := FromContext(c)
	assert.False(t, ok)
}

func TestFromContext_ReturnsStoredActor(t *testing.T) {
	c, _ := newContext(t)
	actor := Actor{
		UserID:    uuid.New(),
		CompanyID: uuid.New(),
		Role:      "staff",
	}
	c.Set(ActorKey, actor)

	got, ok := FromContext(c)
	assert.True(t, ok)
	assert.Equal(t, actor, got)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, Actor{Role: "admin"}.IsAdmin())
	assert.False(t, Actor{Role: "staff"}.IsAdmin())
	assert.False(t, Actor{}.IsAdmin())
}

func TestRequireAdmin_NoActor(t *testing.T) {
	c, rec := newContext(t)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := RequireAdmin(next)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_StaffForbidden(t *testing.T) {
	c, rec := newContext(t)
	c.Set(ActorKey, Actor{UserID: uuid.New(), CompanyID: uuid.New(), Role: "staff"})

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := RequireAdmin(next)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	c, rec := newContext(t)
	c.Set(ActorKey, Actor{UserID: uuid.New(), CompanyID: uuid.New(), Role: "admin"})

	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	err := RequireAdmin(next)(c)

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
