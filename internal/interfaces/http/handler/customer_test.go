package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	partnerapp "github.com/paydesk/backend/internal/application/partner"
	"github.com/paydesk/backend/internal/domain/partner"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/interfaces/http/middleware"
)

// MockCustomerRepository implements partner.CustomerRepository for testing
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllOrdered(ctx context.Context) ([]partner.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	return gin.New()
}

func setupCustomerHandler(repo *MockCustomerRepository) *CustomerHandler {
	return NewCustomerHandler(partnerapp.NewCustomerService(repo))
}

func createTestCustomer(t *testing.T, name string) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(name)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func TestCustomerHandler_Create_Success(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Customer")).Return(nil)

	router := setupTestRouter()
	router.POST("/customers", handler.Create)

	body, _ := json.Marshal(partnerapp.CreateCustomerRequest{Name: "Joel Fernandes"})
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestCustomerHandler_Create_MissingName(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	router := setupTestRouter()
	router.POST("/customers", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Save")
}

func TestCustomerHandler_GetByID_NotFound(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/customers/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/customers/"+id.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerHandler_GetByID_InvalidID(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	router := setupTestRouter()
	router.GET("/customers/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/customers/not-a-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "FindByID")
}

func TestCustomerHandler_List_Success(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	customers := []partner.Customer{*createTestCustomer(t, "Joel Fernandes"), *createTestCustomer(t, "Ramesh Traders")}
	repo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(customers, nil)
	repo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

	router := setupTestRouter()
	router.GET("/customers", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/customers?page=1&page_size=20", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Meta    struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestCustomerHandler_Match_Success(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	customers := []partner.Customer{*createTestCustomer(t, "Joel Fernandes")}
	repo.On("FindAllOrdered", mock.Anything).Return(customers, nil)

	router := setupTestRouter()
	router.GET("/customers/match", handler.Match)

	req := httptest.NewRequest(http.MethodGet, "/customers/match?name=joel", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data partnerapp.CustomerResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Joel Fernandes", resp.Data.Name)
}

func TestCustomerHandler_Match_MissingName(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	router := setupTestRouter()
	router.GET("/customers/match", handler.Match)

	req := httptest.NewRequest(http.MethodGet, "/customers/match", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "FindAllOrdered")
}

func TestCustomerHandler_Match_NoCustomerMatches(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	repo.On("FindAllOrdered", mock.Anything).Return([]partner.Customer{}, nil)

	router := setupTestRouter()
	router.GET("/customers/match", handler.Match)

	req := httptest.NewRequest(http.MethodGet, "/customers/match?name=nobody", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CUSTOMER_NOT_FOUND", resp.Error.Code)
}

func TestCustomerHandler_Delete_Success(t *testing.T) {
	repo := new(MockCustomerRepository)
	handler := setupCustomerHandler(repo)

	customer := createTestCustomer(t, "Joel Fernandes")
	repo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	repo.On("Delete", mock.Anything, customer.ID).Return(nil)

	router := setupTestRouter()
	router.DELETE("/customers/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/customers/"+customer.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}
