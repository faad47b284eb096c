package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/httpapi/service"
)

// MockTitleService mocks the TitleService interface
type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.Paginated, error) {
	args := m.Called(ctx, f, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated), args.Error(1)
}

func (m *MockTitleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestListTitles_FilterParsing(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.GET("/titles", handler.List)

	year := 1994
	expectedFilter := repository.TitleFilter{
		Genre:    "drama",
		Category: "movies",
		Name:     "shawshank",
		Year:     &year,
	}
	page := dto.NewPaginated(0, 1, 20, []dto.TitleResponse{})
	mockTitleService.On("List", mock.Anything, expectedFilter, 1, 20).Return(page, nil)

	req, _ := http.NewRequest("GET", "/titles?genre=drama&category=movies&year=1994&name=shawshank", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockTitleService.AssertExpectations(t)
}

func TestListTitles_BadYearFilter(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.GET("/titles", handler.List)

	req, _ := http.NewRequest("GET", "/titles?year=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTitleService.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTitle_Success(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.GET("/titles/:title_id", handler.Get)

	rating := 7.5
	title := &dto.TitleResponse{ID: 7, Name: "Heat", Year: 1995, Rating: &rating}
	mockTitleService.On("GetByID", mock.Anything, int64(7)).Return(title, nil)

	req, _ := http.NewRequest("GET", "/titles/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.TitleResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "Heat", resp.Name)
	assert.Equal(t, 7.5, *resp.Rating)
}

func TestGetTitle_NotFound(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.GET("/titles/:title_id", handler.Get)

	mockTitleService.On("GetByID", mock.Anything, int64(404)).Return(nil, service.ErrTitleNotFound)

	req, _ := http.NewRequest("GET", "/titles/404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTitle_BadID(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.GET("/titles/:title_id", handler.Get)

	req, _ := http.NewRequest("GET", "/titles/seven", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTitleService.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateTitle_Handler_Success(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.POST("/titles", handler.Create)

	in := dto.CreateTitleDTO{
		Name:     "Heat",
		Year:     1995,
		Genre:    []string{"thriller"},
		Category: "movies",
	}
	created := &dto.TitleResponse{ID: 7, Name: "Heat", Year: 1995}
	mockTitleService.On("Create", mock.Anything, in).Return(created, nil)

	w := postJSON(router, "/titles", in)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockTitleService.AssertExpectations(t)
}

func TestCreateTitle_Handler_YearInFuture(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.POST("/titles", handler.Create)

	mockTitleService.On("Create", mock.Anything, mock.AnythingOfType("dto.CreateTitleDTO")).
		Return(nil, service.ErrYearInFuture)

	w := postJSON(router, "/titles", dto.CreateTitleDTO{
		Name:  "Tomorrow",
		Year:  3000,
		Genre: []string{"drama"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "year", resp["field"])
}

func TestCreateTitle_Handler_MissingGenre(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.POST("/titles", handler.Create)

	// genre carries binding:"required", so the body never reaches the service
	w := postJSON(router, "/titles", map[string]interface{}{
		"name": "No Genres",
		"year": 2000,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTitleService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteTitle_Handler_NoContent(t *testing.T) {
	mockTitleService := new(MockTitleService)
	handler := &TitleHandler{svc: mockTitleService}
	router := setupRouter()
	router.DELETE("/titles/:title_id", handler.Delete)

	mockTitleService.On("Delete", mock.Anything, int64(7)).Return(nil)

	req, _ := http.NewRequest("DELETE", "/titles/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockTitleService.AssertExpectations(t)
}
