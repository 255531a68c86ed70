// Package tenant enforces company-level data isolation. Every handler
// resolves an Actor from the request context and runs its queries
// through Scoped or FindOwned, so the company_id predicate is applied
// the same way for every entity type.
package tenant

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Context keys set by the auth middleware.
const (
	ActorKey = "actor"
)

// Actor is the authenticated (user, company, role) triple derived from
// a request's bearer token.
type Actor struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

// FromContext retrieves the actor stored by the auth middleware.
func FromContext(c echo.Context) (Actor, bool) {
	actor, ok := c.Get(ActorKey).(Actor)
	return actor, ok
}

// Scoped returns the query restricted to the actor's company. It must
// be applied before any caller-supplied filters or pagination on
// collection reads.
func Scoped(db *gorm.DB, actor Actor) *gorm.DB {
	return db.Where("company_id = ?", actor.CompanyID)
}

// FindOwned fetches a row by primary key and company in a single
// lookup. A cross-tenant row and a missing row are indistinguishable:
// both return gorm.ErrRecordNotFound.
func FindOwned(db *gorm.DB, actor Actor, dest interface{}, id uuid.UUID) error {
	return db.Where("id = ? AND company_id = ?", id, actor.CompanyID).First(dest).Error
}

// RequireAdmin rejects non-admin actors with 403. Unlike the not-found
// masking above, the role gate is allowed to reveal that the resource
// exists.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, ok := FromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		if !actor.IsAdmin() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin role required"})
		}
		return next(c)
	}
}
