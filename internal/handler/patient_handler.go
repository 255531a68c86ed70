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
	"gorm.io/gorm"
)

// PatientRequest defines the structure for patient creation requests
type PatientRequest struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	DateOfBirth *model.Date `json:"date_of_birth,omitempty"`
	Address     *string     `json:"address,omitempty"`
}

// PatientUpdateRequest carries partial updates. Absent fields stay nil
// and leave the stored value untouched.
type PatientUpdateRequest struct {
	Name        *string     `json:"name"`
	Email       *string     `json:"email"`
	Phone       *string     `json:"phone"`
	DateOfBirth *model.Date `json:"date_of_birth"`
	Address     *string     `json:"address"`
}

func (req *PatientUpdateRequest) apply(p *model.Patient) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		p.DateOfBirth = req.DateOfBirth
	}
	if req.Address != nil {
		p.Address = req.Address
	}
}

// ListPatients retrieves the patients of the actor's company, with
// optional free-text search over name and email
func ListPatients(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("patient", "list")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	// Tenant filter goes on before any caller-supplied filter
	query := tenant.Scoped(database.GetDB().Model(&model.Patient{}), actor)
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var patients []model.Patient
	result := query.Order("created_at desc").Offset(skip).Limit(limit).Find(&patients)
	if result.Error != nil {
		log.Error("Failed to list patients", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve patients"})
	}

	return c.JSON(http.StatusOK, patients)
}

// CreatePatient creates a new patient in the actor's company
func CreatePatient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("patient", "create")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req PatientRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid patient data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and phone are required"})
	}

	// Company comes from the token, never from the payload
	patient := model.Patient{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		CompanyID:   actor.CompanyID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&patient); result.Error != nil {
		log.Error("Failed to create patient", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create patient"})
	}

	log.Info("Patient created",
		zap.String("patient_id", patient.ID.String()),
		zap.String("company_id", patient.CompanyID.String()))
	return c.JSON(http.StatusCreated, patient)
}

// GetPatient retrieves a single patient of the actor's company
func GetPatient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("patient", "get")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var patient model.Patient
	if err := tenant.FindOwned(database.GetDB(), actor, &patient, id); err != nil {
		log.Warn("Patient not found", zap.String("patient_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}

	return c.JSON(http.StatusOK, patient)
}

// UpdatePatient applies a partial update to a patient of the actor's company
func UpdatePatient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("patient", "update")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient ID"})
	}

	var req PatientUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid patient update data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var patient model.Patient
	if err := tenant.FindOwned(database.GetDB(), actor, &patient, id); err != nil {
		log.Warn("Patient not found for update", zap.String("patient_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}

	req.apply(&patient)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&patient); result.Error != nil {
		log.Error("Failed to update patient", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update patient"})
	}

	log.Info("Patient updated", zap.String("patient_id", patient.ID.String()))
	return c.JSON(http.StatusOK, patient)
}

// DeletePatient removes a patient together with its appointments,
// follow-ups and notes in one transaction
func DeletePatient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("patient", "delete")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient ID"})
	}

	var patient model.Patient
	if err := tenant.FindOwned(database.GetDB(), actor, &patient, id); err != nil {
		log.Warn("Patient not found for delete", zap.String("patient_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("patient_id = ?", patient.ID).Delete(&model.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", patient.ID).Delete(&model.FollowUp{}).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", patient.ID).Delete(&model.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&patient).Error
	})
	if err != nil {
		log.Error("Failed to delete patient", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete patient"})
	}

	log.Info("Patient deleted", zap.String("patient_id", patient.ID.String()))
	return c.NoContent(http.StatusNoContent)
}

// ListPatientNotes retrieves the notes of a patient, newest first
func ListPatientNotes(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("note", "list")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient ID"})
	}

	// Parent must resolve under the scoping rule first
	var patient model.Patient
	if err := tenant.FindOwned(database.GetDB(), actor, &patient, patientID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var notes []model.NoteRow
	result := database.GetDB().Model(&model.Note{}).
		Select("notes.*, users.name AS created_by").
		Joins("LEFT JOIN users ON users.id = notes.created_by_user_id").
		Where("notes.company_id = ? AND notes.patient_id = ?", actor.CompanyID, patientID).
		Order("notes.created_at desc").
		Scan(&notes)
	if result.Error != nil {
		log.Error("Failed to list notes", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve notes"})
	}

	return c.JSON(http.StatusOK, notes)
}

// CreatePatientNote adds a note to a patient of the actor's company
func CreatePatientNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("note", "create")

	actor, ok := tenant.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient ID"})
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	// The cross-tenant or absent parent fails before any child row is written
	var patient model.Patient
	if err := tenant.FindOwned(database.GetDB(), actor, &patient, patientID); err != nil {
		log.Warn("Patient not found for note", zap.String("patient_id", patientID.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}

	note := model.Note{
		PatientID:       patient.ID,
		Content:         req.Content,
		CreatedByUserID: actor.UserID,
		CompanyID:       actor.CompanyID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&note); result.Error != nil {
		log.Error("Failed to create note", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create note"})
	}

	log.Info("Note created",
		zap.String("note_id", note.ID.String()),
		zap.String("patient_id", patient.ID.String()))
	return c.JSON(http.StatusCreated, note)
}
