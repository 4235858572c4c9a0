package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := services.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewRequestValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestCreateFeeStructure(t *testing.T) {
	db := setupTestDB(t)
	h := NewFeeStructureHandler(db)

	body := `{"name":"Tuition Fee","amount":5000,"frequency":"monthly","category":"academic"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/fee-structures", body)

	if err := h.CreateFeeStructure(c); err != nil {
		t.Fatalf("CreateFeeStructure failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d; want 201", rec.Code)
	}

	var created models.FeeStructure
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == 0 || created.Name != "Tuition Fee" {
		t.Errorf("unexpected response: %+v", created)
	}

	var count int64
	db.Model(&models.FeeStructure{}).Count(&count)
	if count != 1 {
		t.Errorf("fee structure rows = %d; want 1", count)
	}
}

func TestCreateFeeStructureValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewFeeStructureHandler(db)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"amount":5000,"frequency":"monthly"}`},
		{"bad frequency", `{"name":"Tuition Fee","amount":5000,"frequency":"weekly"}`},
		{"negative amount", `{"name":"Tuition Fee","amount":-100,"frequency":"monthly"}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, http.MethodPost, "/api/fee-structures", tt.body)
			err := h.CreateFeeStructure(c)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := httpStatus(t, err); code != http.StatusBadRequest {
				t.Errorf("status = %d; want 400", code)
			}
		})
	}

	var count int64
	db.Model(&models.FeeStructure{}).Count(&count)
	if count != 0 {
		t.Errorf("fee structure rows = %d; want 0", count)
	}
}

func TestGetFeeStructureNotFound(t *testing.T) {
	db := setupTestDB(t)
	h := NewFeeStructureHandler(db)

	c, _ := newTestContext(t, http.MethodGet, "/api/fee-structures/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")

	err := h.GetFeeStructure(c)
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := httpStatus(t, err); code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", code)
	}
}

func TestDeleteFeeStructureHidesFromCatalog(t *testing.T) {
	db := setupTestDB(t)
	h := NewFeeStructureHandler(db)

	structure := models.FeeStructure{Name: "Lab Fee", Amount: 1200, Frequency: models.FeeFrequencyMonthly}
	if err := db.Create(&structure).Error; err != nil {
		t.Fatalf("failed to seed structure: %v", err)
	}

	c, rec := newTestContext(t, http.MethodDelete, "/api/fee-structures/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.DeleteFeeStructure(c); err != nil {
		t.Fatalf("DeleteFeeStructure failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}

	var count int64
	db.Model(&models.FeeStructure{}).Count(&count)
	if count != 0 {
		t.Errorf("catalog rows after delete = %d; want 0", count)
	}

	// Soft delete keeps the row for invoice history
	db.Unscoped().Model(&models.FeeStructure{}).Count(&count)
	if count != 1 {
		t.Errorf("unscoped rows after delete = %d; want 1", count)
	}
}
