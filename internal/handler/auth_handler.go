package handler

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"clinic-service/internal/model"
	"clinic-service/pkg/database"
	"clinic-service/pkg/jwtutil"
	"clinic-service/pkg/logger"
	"clinic-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// userProfile is the account payload returned by every auth endpoint.
type userProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	CompanyCode string `json:"company_code"`
}

func profileOf(user *model.User, company *model.Company) userProfile {
	return userProfile{
		ID:          user.ID.String(),
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		CompanyID:   company.ID.String(),
		CompanyName: company.Name,
		CompanyCode: company.Code,
	}
}

func tokenResponse(c echo.Context, status int, user *model.User, company *model.Company) error {
	token, err := jwtutil.GenerateToken(user.Email, user.ID, company.ID, user.Role)
	if err != nil {
		logger.FromContext(c).Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	return c.JSON(status, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         profileOf(user, company),
	})
}

// generateCompanyCode draws a candidate registration code. Callers
// retry on collision; the unique index on companies.code is the final
// arbiter under races.
func generateCompanyCode() string {
	return fmt.Sprintf("CLINIC%03d", rand.Intn(1000))
}

// Login authenticates a staff member by email and password
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Unknown email and wrong password answer identically
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("Login failed: user not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Login failed: invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
	}

	var company model.Company
	if result := database.GetDB().First(&company, "id = ?", user.CompanyID); result.Error != nil {
		log.Error("Company lookup failed", zap.Error(result.Error))
		prometheus.RecordAuthError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("company_id", user.CompanyID.String()),
		zap.String("role", user.Role))

	return tokenResponse(c, http.StatusOK, &user, &company)
}

// RegisterCompany bootstraps a new company together with its admin account
func RegisterCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.WithLabelValues("company").Inc()

	var req struct {
		CompanyName string `json:"companyName"`
		AdminName   string `json:"adminName"`
		Email       string `json:"email"`
		Password    string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse company registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.CompanyName == "" || req.AdminName == "" || req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "companyName, adminName, email and password are required"})
	}

	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if result := db.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Retry code selection on collision; the insert below still relies
	// on the unique index to reject a race-lost duplicate.
	code := generateCompanyCode()
	for {
		var count int64
		db.Model(&model.Company{}).Where("code = ?", code).Count(&count)
		if count == 0 {
			break
		}
		code = generateCompanyCode()
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	company := model.Company{Name: req.CompanyName, Code: code}
	user := model.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         req.AdminName,
		Role:         model.RoleAdmin,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&company); result.Error != nil {
			return result.Error
		}
		user.CompanyID = company.ID
		if result := tx.Create(&user); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			prometheus.RecordAuthError("email_already_exists")
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		log.Error("Failed to register company", zap.Error(err))
		prometheus.RecordAuthError("company_registration_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("Company registered",
		zap.String("company_id", company.ID.String()),
		zap.String("code", company.Code),
		zap.String("admin_email", user.Email))

	return tokenResponse(c, http.StatusCreated, &user, &company)
}

// RegisterStaff joins an existing company using its registration code
func RegisterStaff(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.WithLabelValues("staff").Inc()

	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		CompanyCode string `json:"companyCode"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse staff registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.CompanyCode == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email, password and companyCode are required"})
	}

	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if result := db.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	var company model.Company
	if result := db.Where("code = ?", req.CompanyCode).First(&company); result.Error != nil {
		log.Warn("Invalid company code", zap.String("code", req.CompanyCode))
		prometheus.RecordAuthError("invalid_company_code")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid company code"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         req.Name,
		Role:         model.RoleStaff,
		CompanyID:    company.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			prometheus.RecordAuthError("email_already_exists")
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		log.Error("Failed to create staff user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("Staff registered",
		zap.String("email", user.Email),
		zap.String("company_id", company.ID.String()))

	return tokenResponse(c, http.StatusCreated, &user, &company)
}

// Logout is a stateless no-op: tokens expire on their own and clients
// drop them locally.
func Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "successfully logged out"})
}

// MetricsHandler exposes the Prometheus metrics endpoint
func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
