package handler

import (
	"testing"

	"clinic-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTestStaff(t *testing.T, e *echo.Echo, companyCode string) authResponse {
	t.Helper()
	rec := doJSON(t, e, "POST", "/api/auth/register/staff", "", map[string]string{
		"name":        "Staff Member",
		"email":       uniqueEmail("staff"),
		"password":    "s3cret-password",
		"companyCode": companyCode,
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var resp authResponse
	decodeJSON(t, rec, &resp)
	return resp
}

func TestStaffRosterIsAdminOnly(t *testing.T) {
	setupTestDB(t)
	e := newTestRouter()

	admin := registerTestCompany(t, e, "Omicron Clinic")
	staff := registerTestStaff(t, e, admin.User.CompanyCode)

	// The role gate is allowed to reveal that the collection exists
	forbidden := doJSON(t, e, "GET", "/api/staff", staff.AccessToken, nil)
	assert.Equal(t, 403, forbidden.Code)

	list := doJSON(t, e, "GET", "/api/staff", admin.AccessToken, nil)
	require.Equal(t, 200, list.Code)
	var roster []model.User
	decodeJSON(t, list, &roster)
	assert.Len(t, roster, 2)
}

func TestStaffRemovalRules(t *testing.T) {
	setupTestDB(t)
	e := newTestRouter()

	admin := registerTestCompany(t, e, "Pi Clinic")
	staff := registerTestStaff(t, e, admin.User.CompanyCode)
	otherAdmin := registerTestCompany(t, e, "Rho Clinic")

	// Self-removal is blocked
	self := doJSON(t, e, "DELETE", "/api/staff/"+admin.User.ID, admin.AccessToken, nil)
	assert.Equal(t, 400, self.Code)

	// A staff record in another company is masked as not found
	foreign := doJSON(t, e, "DELETE", "/api/staff/"+staff.User.ID, otherAdmin.AccessToken, nil)
	assert.Equal(t, 404, foreign.Code)

	// Non-admins cannot remove anyone
	byStaff := doJSON(t, e, "DELETE", "/api/staff/"+admin.User.ID, staff.AccessToken, nil)
	assert.Equal(t, 403, byStaff.Code)

	// Same-company removal by the admin succeeds
	ok := doJSON(t, e, "DELETE", "/api/staff/"+staff.User.ID, admin.AccessToken, nil)
	assert.Equal(t, 204, ok.Code)

	list := doJSON(t, e, "GET", "/api/staff", admin.AccessToken, nil)
	require.Equal(t, 200, list.Code)
	var roster []model.User
	decodeJSON(t, list, &roster)
	assert.Len(t, roster, 1)
}
