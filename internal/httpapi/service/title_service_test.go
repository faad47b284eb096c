package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
)

// MockGenreRepository mocks the GenreRepository interface
type MockGenreRepository struct {
	mock.Mock
}

func (m *MockGenreRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Genre), args.Get(1).(int64), args.Error(2)
}

func (m *MockGenreRepository) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Genre), args.Error(1)
}

func (m *MockGenreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockGenreRepository) Create(ctx context.Context, g *models.Genre) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGenreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetOrCreateDefault(ctx context.Context) (*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func newTitleServiceForTest() (TitleService, *MockTitleRepository, *MockGenreRepository, *MockCategoryRepository) {
	mockTitles := new(MockTitleRepository)
	mockGenres := new(MockGenreRepository)
	mockCategories := new(MockCategoryRepository)
	return NewTitleService(mockTitles, mockGenres, mockCategories, nil), mockTitles, mockGenres, mockCategories
}

func TestCreateTitle_Success(t *testing.T) {
	titleService, mockTitles, mockGenres, mockCategories := newTitleServiceForTest()

	genres := []models.Genre{{ID: 1, Name: "Drama", Slug: "drama"}}
	category := &models.Category{ID: 2, Name: "Movies", Slug: "movies"}
	mockGenres.On("FindBySlugs", mock.Anything, []string{"drama"}).Return(genres, nil)
	mockCategories.On("FindBySlug", mock.Anything, "movies").Return(category, nil)
	mockTitles.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Title).ID = 7
		}).Return(nil)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleDTO{
		Name:     "  The Long Goodbye ",
		Year:     1973,
		Genre:    []string{"drama"},
		Category: "movies",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "The Long Goodbye", resp.Name)
	assert.Nil(t, resp.Rating)
	assert.Equal(t, "movies", resp.Category.Slug)
	mockTitles.AssertExpectations(t)
}

func TestCreateTitle_YearInFuture(t *testing.T) {
	titleService, mockTitles, _, _ := newTitleServiceForTest()

	resp, err := titleService.Create(context.Background(), dto.CreateTitleDTO{
		Name:  "Tomorrow",
		Year:  time.Now().Year() + 1,
		Genre: []string{"drama"},
	})

	assert.ErrorIs(t, err, ErrYearInFuture)
	assert.Nil(t, resp)
	mockTitles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTitle_EmptyGenre(t *testing.T) {
	titleService, _, _, _ := newTitleServiceForTest()

	resp, err := titleService.Create(context.Background(), dto.CreateTitleDTO{
		Name:  "No Genres",
		Year:  2000,
		Genre: []string{},
	})

	assert.ErrorIs(t, err, ErrEmptyGenre)
	assert.Nil(t, resp)
}

func TestCreateTitle_UnknownGenre(t *testing.T) {
	titleService, _, mockGenres, _ := newTitleServiceForTest()

	// only one of the two slugs resolves
	mockGenres.On("FindBySlugs", mock.Anything, []string{"drama", "nope"}).
		Return([]models.Genre{{ID: 1, Slug: "drama"}}, nil)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleDTO{
		Name:  "Partial",
		Year:  2000,
		Genre: []string{"drama", "nope"},
	})

	assert.ErrorIs(t, err, ErrUnknownGenre)
	assert.Nil(t, resp)
}

func TestCreateTitle_DefaultCategory(t *testing.T) {
	titleService, mockTitles, mockGenres, mockCategories := newTitleServiceForTest()

	genres := []models.Genre{{ID: 1, Slug: "drama"}}
	sentinel := &models.Category{ID: 9, Name: models.DefaultCategoryName, Slug: models.DefaultCategorySlug}
	mockGenres.On("FindBySlugs", mock.Anything, []string{"drama"}).Return(genres, nil)
	mockCategories.On("GetOrCreateDefault", mock.Anything).Return(sentinel, nil)
	mockTitles.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).Return(nil)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleDTO{
		Name:  "Uncategorized Thing",
		Year:  2000,
		Genre: []string{"drama"},
	})

	assert.NoError(t, err)
	assert.Equal(t, models.DefaultCategorySlug, resp.Category.Slug)
	mockCategories.AssertExpectations(t)
}

func TestCreateTitle_UnknownCategory(t *testing.T) {
	titleService, _, mockGenres, mockCategories := newTitleServiceForTest()

	mockGenres.On("FindBySlugs", mock.Anything, []string{"drama"}).
		Return([]models.Genre{{ID: 1, Slug: "drama"}}, nil)
	mockCategories.On("FindBySlug", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleDTO{
		Name:     "Lost",
		Year:     2000,
		Genre:    []string{"drama"},
		Category: "missing",
	})

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, resp)
}

func TestGetTitle_NotFound(t *testing.T) {
	titleService, mockTitles, _, _ := newTitleServiceForTest()

	mockTitles.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	resp, err := titleService.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrTitleNotFound)
	assert.Nil(t, resp)
}

func TestUpdateTitle_YearInFuture(t *testing.T) {
	titleService, mockTitles, _, _ := newTitleServiceForTest()

	stored := &models.Title{ID: 7, Name: "Old", Year: 1990}
	mockTitles.On("GetByID", mock.Anything, int64(7)).Return(stored, nil)

	year := time.Now().Year() + 5
	resp, err := titleService.Update(context.Background(), 7, dto.UpdateTitleDTO{Year: &year})

	assert.ErrorIs(t, err, ErrYearInFuture)
	assert.Nil(t, resp)
	mockTitles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateTitle_ReplacesGenres(t *testing.T) {
	titleService, mockTitles, mockGenres, _ := newTitleServiceForTest()

	stored := &models.Title{ID: 7, Name: "Old", Year: 1990}
	newGenres := []models.Genre{{ID: 3, Slug: "thriller"}}
	mockTitles.On("GetByID", mock.Anything, int64(7)).Return(stored, nil)
	mockTitles.On("Update", mock.Anything, mock.AnythingOfType("*models.Title")).Return(nil)
	mockGenres.On("FindBySlugs", mock.Anything, []string{"thriller"}).Return(newGenres, nil)
	mockTitles.On("ReplaceGenres", mock.Anything, mock.AnythingOfType("*models.Title"), newGenres).Return(nil)

	genre := []string{"thriller"}
	resp, err := titleService.Update(context.Background(), 7, dto.UpdateTitleDTO{Genre: &genre})

	assert.NoError(t, err)
	assert.Len(t, resp.Genre, 1)
	assert.Equal(t, "thriller", resp.Genre[0].Slug)
	mockTitles.AssertExpectations(t)
}

func TestDeleteTitle_NotFound(t *testing.T) {
	titleService, mockTitles, _, _ := newTitleServiceForTest()

	mockTitles.On("Delete", mock.Anything, int64(404)).Return(gorm.ErrRecordNotFound)

	err := titleService.Delete(context.Background(), 404)

	assert.ErrorIs(t, err, ErrTitleNotFound)
}
