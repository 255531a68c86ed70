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

// FollowUpRequest defines the structure for follow-up creation requests
type FollowUpRequest struct {
	PatientID   uuid.UUID  `json:"patient_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     model.Date `json:"due_date"`
	Status      string     `json:"status"`
}

// FollowUpUpdateRequest carries partial updates. Absent fields stay
// nil and leave the stored value untouched.
type FollowUpUpdateRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	DueDate     *model.Date `json:"due_date"`
	Status      *string     `json:"status"`
}

func (req *FollowUpUpdateRequest) apply(f *model.FollowUp) {
	if req.Title != nil {
		f.Title = *req.Title
	}
	if req.Description != nil {
		f.Description = req.Description
	}
	if req.DueDate != nil {
		f.DueDate = *req.DueDate
	}
	if req.Status != nil {
		f.Status = *req.Status
	}
}

// ListFollowUps retrieves the follow-ups of the actor's company,
// filterable by status, soonest due first
func ListFollowUps(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("follow_up", "list")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := database.GetDB().Model(&model.FollowUp{}).
		Select("follow_ups.*, patients.name AS patient_name").
		Joins("LEFT JOIN patients ON patients.id = follow_ups.patient_id").
		Where("follow_ups.company_id = ?", actor.CompanyID)

	if status := c.QueryParam("status"); status != "" {
		if !model.ValidFollowUpStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		query = query.Where("follow_ups.status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []model.FollowUpRow
	result := query.Order("follow_ups.due_date asc").Limit(limit).Scan(&rows)
	if result.Error != nil {
		log.Error("Failed to list follow-ups", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve follow-ups"})
	}

	return c.JSON(http.StatusOK, rows)
}

// CreateFollowUp opens a follow-up for a patient of the actor's company
func CreateFollowUp(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("follow_up", "create")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req FollowUpRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid follow-up data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.PatientID == uuid.Nil || req.Title == "" || req.DueDate.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patient_id, title and due_date are required"})
	}
	if req.Status == "" {
		req.Status = model.FollowUpOpen
	}
	if !model.ValidFollowUpStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	// Parent must resolve under the scoping rule before the child is written
	var patient model.Patient
	if err := tenant.FindOwned(database.GetDB(), actor, &patient, req.PatientID); err != nil {
		log.Warn("Patient not found for follow-up", zap.String("patient_id", req.PatientID.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}

	followUp := model.FollowUp{
		PatientID:   patient.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		CompanyID:   actor.CompanyID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&followUp); result.Error != nil {
		log.Error("Failed to create follow-up", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create follow-up"})
	}

	log.Info("Follow-up created",
		zap.String("follow_up_id", followUp.ID.String()),
		zap.String("patient_id", patient.ID.String()),
		zap.String("due_date", followUp.DueDate.String()))
	return c.JSON(http.StatusCreated, followUp)
}

// UpdateFollowUp applies a partial update to a follow-up of the actor's company
func UpdateFollowUp(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("follow_up", "update")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid follow-up ID"})
	}

	var req FollowUpUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid follow-up update data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Status != nil && !model.ValidFollowUpStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	var followUp model.FollowUp
	if err := tenant.FindOwned(database.GetDB(), actor, &followUp, id); err != nil {
		log.Warn("Follow-up not found for update", zap.String("follow_up_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "follow-up not found"})
	}

	req.apply(&followUp)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&followUp); result.Error != nil {
		log.Error("Failed to update follow-up", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update follow-up"})
	}

	log.Info("Follow-up updated", zap.String("follow_up_id", followUp.ID.String()))
	return c.JSON(http.StatusOK, followUp)
}
