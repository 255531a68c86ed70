package handler

import (
	"net/http"
	"time"

	"clinic-service/internal/model"
	"clinic-service/internal/tenant"
	"clinic-service/pkg/database"
	"clinic-service/pkg/logger"
	"clinic-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListStaff retrieves the staff roster of the actor's company. The
// route is admin-gated by tenant.RequireAdmin.
func ListStaff(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("staff", "list")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var staff []model.User
	result := tenant.Scoped(database.GetDB().Model(&model.User{}), actor).
		Order("created_at asc").
		Find(&staff)
	if result.Error != nil {
		log.Error("Failed to list staff", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve staff"})
	}

	return c.JSON(http.StatusOK, staff)
}

// RemoveStaff deletes a staff record from the actor's company. Admins
// cannot remove themselves. Nothing stops an admin from removing the
// sole remaining other admin; that gap is deliberate.
func RemoveStaff(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("staff", "remove")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid staff ID"})
	}

	if id == actor.UserID {
		log.Warn("Admin attempted self-removal", zap.String("user_id", id.String()))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot remove yourself"})
	}

	var user model.User
	if err := tenant.FindOwned(database.GetDB(), actor, &user, id); err != nil {
		log.Warn("Staff member not found", zap.String("user_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&user); result.Error != nil {
		log.Error("Failed to remove staff member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove staff member"})
	}

	log.Info("Staff member removed",
		zap.String("user_id", user.ID.String()),
		zap.String("removed_by", actor.UserID.String()))
	return c.NoContent(http.StatusNoContent)
}
