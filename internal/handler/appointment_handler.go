package handler

import (
	"net/http"
	"strconv"
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

// AppointmentRequest defines the structure for appointment creation requests
type AppointmentRequest struct {
	PatientID uuid.UUID  `json:"patient_id"`
	Date      model.Date `json:"date"`
	Time      string     `json:"time"`
	Reason    string     `json:"reason"`
	Status    string     `json:"status"`
}

// AppointmentUpdateRequest carries partial updates. Absent fields stay
// nil and leave the stored value untouched.
type AppointmentUpdateRequest struct {
	Date   *model.Date `json:"date"`
	Time   *string     `json:"time"`
	Reason *string     `json:"reason"`
	Status *string     `json:"status"`
}

func (req *AppointmentUpdateRequest) apply(a *model.Appointment) {
	if req.Date != nil {
		a.Date = *req.Date
	}
	if req.Time != nil {
		a.Time = *req.Time
	}
	if req.Reason != nil {
		a.Reason = *req.Reason
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
}

// ListAppointments retrieves the appointments of the actor's company,
// filterable by date range and status, with the patient name projected in
func ListAppointments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("appointment", "list")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := database.GetDB().Model(&model.Appointment{}).
		Select("appointments.*, patients.name AS patient_name").
		Joins("LEFT JOIN patients ON patients.id = appointments.patient_id").
		Where("appointments.company_id = ?", actor.CompanyID)

	if raw := c.QueryParam("start_date"); raw != "" {
		startDate, err := model.ParseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date, expected YYYY-MM-DD"})
		}
		query = query.Where("appointments.date >= ?", startDate)
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		endDate, err := model.ParseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date, expected YYYY-MM-DD"})
		}
		query = query.Where("appointments.date <= ?", endDate)
	}
	if status := c.QueryParam("status"); status != "" {
		if !model.ValidAppointmentStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		query = query.Where("appointments.status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []model.AppointmentRow
	result := query.Order("appointments.date asc, appointments.time asc").Limit(limit).Scan(&rows)
	if result.Error != nil {
		log.Error("Failed to list appointments", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve appointments"})
	}

	return c.JSON(http.StatusOK, rows)
}

// CreateAppointment schedules an appointment for a patient of the actor's company
func CreateAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("appointment", "create")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid appointment data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.PatientID == uuid.Nil || req.Date.IsZero() || req.Time == "" || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patient_id, date, time and reason are required"})
	}
	if req.Status == "" {
		req.Status = model.AppointmentScheduled
	}
	if !model.ValidAppointmentStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	// Parent must resolve under the scoping rule before the child is written
	var patient model.Patient
	if err := tenant.FindOwned(database.GetDB(), actor, &patient, req.PatientID); err != nil {
		log.Warn("Patient not found for appointment", zap.String("patient_id", req.PatientID.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}

	appointment := model.Appointment{
		PatientID: patient.ID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    req.Status,
		CompanyID: actor.CompanyID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&appointment); result.Error != nil {
		log.Error("Failed to create appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create appointment"})
	}

	log.Info("Appointment created",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("patient_id", patient.ID.String()),
		zap.String("date", appointment.Date.String()))
	return c.JSON(http.StatusCreated, appointment)
}

// UpdateAppointment applies a partial update to an appointment of the actor's company
func UpdateAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("appointment", "update")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment ID"})
	}

	var req AppointmentUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid appointment update data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Status != nil && !model.ValidAppointmentStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	var appointment model.Appointment
	if err := tenant.FindOwned(database.GetDB(), actor, &appointment, id); err != nil {
		log.Warn("Appointment not found for update", zap.String("appointment_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	req.apply(&appointment)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&appointment); result.Error != nil {
		log.Error("Failed to update appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update appointment"})
	}

	log.Info("Appointment updated", zap.String("appointment_id", appointment.ID.String()))
	return c.JSON(http.StatusOK, appointment)
}
