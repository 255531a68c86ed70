package handler

import (
	"net/http"
	"time"

	"clinic-service/internal/model"
	"clinic-service/internal/tenant"
	"clinic-service/pkg/database"
	"clinic-service/pkg/logger"
	"clinic-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DashboardStats is the aggregate view for a company's landing page.
type DashboardStats struct {
	TotalPatients        int64                  `json:"total_patients"`
	TodayAppointments    int64                  `json:"today_appointments"`
	OpenFollowUps        int64                  `json:"open_follow_ups"`
	UpcomingAppointments []model.AppointmentRow `json:"upcoming_appointments"`
	OpenFollowUpsList    []model.FollowUpRow    `json:"open_follow_ups_list"`
}

// GetDashboardStats returns patient/appointment/follow-up counts plus
// the five soonest upcoming appointments and soonest-due open
// follow-ups of the actor's company.
func GetDashboardStats(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("dashboard", "stats")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	db := database.GetDB()
	today := model.Today()
	stats := DashboardStats{
		UpcomingAppointments: []model.AppointmentRow{},
		OpenFollowUpsList:    []model.FollowUpRow{},
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	if err := tenant.Scoped(db.Model(&model.Patient{}), actor).
		Count(&stats.TotalPatients).Error; err != nil {
		log.Error("Failed to count patients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	if err := tenant.Scoped(db.Model(&model.Appointment{}), actor).
		Where("date = ? AND status = ?", today, model.AppointmentScheduled).
		Count(&stats.TodayAppointments).Error; err != nil {
		log.Error("Failed to count today's appointments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	if err := tenant.Scoped(db.Model(&model.FollowUp{}), actor).
		Where("status = ?", model.FollowUpOpen).
		Count(&stats.OpenFollowUps).Error; err != nil {
		log.Error("Failed to count open follow-ups", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	if err := db.Model(&model.Appointment{}).
		Select("appointments.*, patients.name AS patient_name").
		Joins("LEFT JOIN patients ON patients.id = appointments.patient_id").
		Where("appointments.company_id = ? AND appointments.date >= ? AND appointments.status = ?",
			actor.CompanyID, today, model.AppointmentScheduled).
		Order("appointments.date asc, appointments.time asc").
		Limit(5).
		Scan(&stats.UpcomingAppointments).Error; err != nil {
		log.Error("Failed to load upcoming appointments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	if err := db.Model(&model.FollowUp{}).
		Select("follow_ups.*, patients.name AS patient_name").
		Joins("LEFT JOIN patients ON patients.id = follow_ups.patient_id").
		Where("follow_ups.company_id = ? AND follow_ups.status = ?", actor.CompanyID, model.FollowUpOpen).
		Order("follow_ups.due_date asc").
		Limit(5).
		Scan(&stats.OpenFollowUpsList).Error; err != nil {
		log.Error("Failed to load open follow-ups", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	return c.JSON(http.StatusOK, stats)
}
