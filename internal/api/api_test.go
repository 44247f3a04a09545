package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"atlas/server/internal/auth"
	"atlas/server/internal/database"
	"atlas/server/internal/enrichment"
	"atlas/server/internal/models"
	"atlas/server/internal/rental"
)

type stubProvider struct {
	details  rental.Record
	estimate rental.Record
	comps    []rental.Record
	err      error
}

func (s *stubProvider) GetPropertyDetails(address string) (rental.Record, error) {
	return s.details, s.err
}

func (s *stubProvider) GetRentEstimate(address string) (rental.Record, error) {
	return s.estimate, s.err
}

func (s *stubProvider) GetRentComps(address string, limit int) ([]rental.Record, error) {
	return s.comps, s.err
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	provider *stubProvider
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	provider := &stubProvider{
		details:  rental.Record{"bedrooms": 3.0, "squareFootage": 1200.0},
		estimate: rental.Record{"rent": 2100.0, "lowRent": 1900.0, "highRent": 2300.0, "confidenceScore": 0.8},
		comps: []rental.Record{
			{"address": "2 Main St", "rent": 2000.0},
			{"address": "3 Main St", "rent": 2200.0},
		},
	}

	enricher := enrichment.NewEnricher(db, provider, logger)
	tokens := auth.NewTokenIssuer("test-secret", 30, 60)
	handler := NewHandler(db, tokens, enricher, logger)

	router := gin.New()
	SetupRoutes(router, handler)

	return &testEnv{router: router, db: db, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// registerUser runs the register endpoint and returns the access token.
func (e *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "super-secret-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Tokens TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Tokens.AccessToken)
	return resp.Tokens.AccessToken
}

func (e *testEnv) createPortfolio(t *testing.T, token, name string) int64 {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/portfolios", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var portfolio models.Portfolio
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &portfolio))
	return portfolio.ID
}

func (e *testEnv) createProperty(t *testing.T, token string, portfolioID int64) int64 {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/properties", token, gin.H{
		"portfolio_id": portfolioID,
		"address":      "1 Main St",
		"city":         "Austin",
		"state":        "TX",
		"zip":          "78701",
		"monthly_rent": 1500,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var property models.Property
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &property))
	return property.ID
}

func TestAuthFlow(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "User@Example.com",
		"password": "super-secret-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate email rejected
	rec = env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "user@example.com",
		"password": "super-secret-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Login with the normalized email
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "user@example.com",
		"password": "super-secret-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Wrong password
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Refresh with the refresh token
	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{
		"refresh_token": resp.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Access token does not work as a refresh token
	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{
		"refresh_token": resp.Tokens.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Me requires auth
	rec = env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/auth/me", resp.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodGet, "/api/portfolios", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/dashboard", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnerScoping(t *testing.T) {
	env := setupEnv(t)

	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")

	portfolioID := env.createPortfolio(t, alice, "Alice Holdings")
	propertyID := env.createProperty(t, alice, portfolioID)

	// Bob cannot see or touch Alice's records
	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/portfolios/%d", portfolioID), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/properties/%d", propertyID), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/properties/%d/refresh-rentcast", propertyID), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bob cannot create a property in Alice's portfolio
	rec = env.do(t, http.MethodPost, "/api/properties", bob, gin.H{
		"portfolio_id": portfolioID,
		"address":      "13 Side St",
		"city":         "Austin",
		"state":        "TX",
		"zip":          "78701",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Alice still can
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/properties/%d", propertyID), alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPagination(t *testing.T) {
	env := setupEnv(t)
	token := env.registerUser(t, "pager@example.com")

	for i := 0; i < 3; i++ {
		env.createPortfolio(t, token, fmt.Sprintf("Portfolio %d", i))
	}

	rec := env.do(t, http.MethodGet, "/api/portfolios?page=1&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items    []models.Portfolio `json:"items"`
		Total    int64              `json:"total"`
		Page     int                `json:"page"`
		PageSize int                `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.PageSize)

	rec = env.do(t, http.MethodGet, "/api/portfolios?page=2&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)

	rec = env.do(t, http.MethodGet, "/api/portfolios?page=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	env := setupEnv(t)
	token := env.registerUser(t, "landlord@example.com")
	portfolioID := env.createPortfolio(t, token, "Rentals")
	propertyID := env.createProperty(t, token, portfolioID)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/properties/%d/refresh-rentcast", propertyID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var property models.Property
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &property))
	assert.Equal(t, 2100.0, property.MonthlyRent)
	assert.Equal(t, 3.0, property.Bedrooms)
	assert.NotNil(t, property.RcLastCheckedAt)

	var compCount int64
	require.NoError(t, env.db.Model(&models.RentComp{}).Where("property_id = ?", propertyID).Count(&compCount).Error)
	assert.Equal(t, int64(2), compCount)

	var estimateCount int64
	require.NoError(t, env.db.Model(&models.RentEstimate{}).Where("property_id = ?", propertyID).Count(&estimateCount).Error)
	assert.Equal(t, int64(1), estimateCount)
}

func TestRefreshEndpointUpstreamFailure(t *testing.T) {
	env := setupEnv(t)
	token := env.registerUser(t, "landlord@example.com")
	portfolioID := env.createPortfolio(t, token, "Rentals")
	propertyID := env.createProperty(t, token, portfolioID)

	env.provider.err = fmt.Errorf("%w: rate limited repeatedly", rental.ErrUpstream)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/properties/%d/refresh-rentcast", propertyID), token, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var property models.Property
	require.NoError(t, env.db.First(&property, propertyID).Error)
	assert.Equal(t, 1500.0, property.MonthlyRent)
	assert.Nil(t, property.RcLastCheckedAt)
}

func TestPreviewEndpoint(t *testing.T) {
	env := setupEnv(t)
	token := env.registerUser(t, "scout@example.com")

	rec := env.do(t, http.MethodGet, "/api/integrations/rentcast/preview?address=1+Main+St", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Details  rental.Record   `json:"details"`
		Estimate rental.Record   `json:"estimate"`
		Comps    []rental.Record `json:"comps"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3.0, resp.Details["bedrooms"])
	assert.Equal(t, 2100.0, resp.Estimate["rent"])
	assert.Len(t, resp.Comps, 2)

	rec = env.do(t, http.MethodGet, "/api/integrations/rentcast/preview", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.provider.err = rental.ErrUpstream
	rec = env.do(t, http.MethodGet, "/api/integrations/rentcast/preview?address=1+Main+St", token, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDashboard(t *testing.T) {
	env := setupEnv(t)
	token := env.registerUser(t, "investor@example.com")
	portfolioID := env.createPortfolio(t, token, "Everything")

	rec := env.do(t, http.MethodPost, "/api/properties", token, gin.H{
		"portfolio_id":               portfolioID,
		"address":                    "1 Main St",
		"city":                       "Austin",
		"state":                      "TX",
		"zip":                        "78701",
		"purchase_price":             300000,
		"last_valuation":             350000,
		"monthly_rent":               2000,
		"monthly_operating_expenses": 400,
		"monthly_mortgage":           1100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/stocks", token, gin.H{
		"portfolio_id": portfolioID,
		"symbol":       "VTI",
		"shares":       10,
		"last_price":   250,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary DashboardSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 352500.0, summary.TotalNetWorth)
	assert.Equal(t, 500.0, summary.LiquidCashflowMonthly)
	assert.Equal(t, 1, summary.PropertyCount)
	assert.Equal(t, 1, summary.StockCount)
	assert.Equal(t, 2500.0, summary.Allocation.StocksValue)
	assert.Equal(t, 350000.0, summary.Allocation.PropertiesValue)
	require.Len(t, summary.Timeline, 6)
	assert.InDelta(t, summary.TotalNetWorth*0.99, summary.Timeline[5].NetWorth, 0.01)
}

func TestPropertyCRUD(t *testing.T) {
	env := setupEnv(t)
	token := env.registerUser(t, "crud@example.com")
	portfolioID := env.createPortfolio(t, token, "CRUD")
	propertyID := env.createProperty(t, token, portfolioID)

	// Partial update leaves unspecified fields alone
	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/properties/%d", propertyID), token, gin.H{
		"monthly_rent": 1650,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var property models.Property
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &property))
	assert.Equal(t, 1650.0, property.MonthlyRent)
	assert.Equal(t, "1 Main St", property.Address)

	// Delete cascades to enrichment rows
	require.NoError(t, env.db.Create(&models.RentComp{PropertyID: propertyID, Address: "2 Main St"}).Error)
	require.NoError(t, env.db.Create(&models.RentEstimate{PropertyID: propertyID, Estimate: 1500}).Error)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/properties/%d", propertyID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.RentComp{}).Where("property_id = ?", propertyID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.RentEstimate{}).Where("property_id = ?", propertyID).Count(&count).Error)
	assert.Zero(t, count)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/properties/%d", propertyID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
