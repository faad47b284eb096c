package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewhub/internal/httpapi/models"
)

// newTestDB opens a per-test in-memory database with the full schema, so the
// repository runs against real SQL instead of mocks.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTitle(t *testing.T, db *gorm.DB) *models.Title {
	t.Helper()
	title := &models.Title{Name: "Solaris", Year: 1972}
	require.NoError(t, db.Create(title).Error)
	return title
}

func titleRating(t *testing.T, db *gorm.DB, id int64) *float64 {
	t.Helper()
	var title models.Title
	require.NoError(t, db.First(&title, id).Error)
	return title.Rating
}

func TestReviewCreate_RecomputesRating(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db)
	first := seedUser(t, db, "first")
	second := seedUser(t, db, "second")

	require.Nil(t, titleRating(t, db, title.ID))

	err := repo.Create(context.Background(), &models.Review{
		TitleID: title.ID, AuthorID: first.ID, Text: "great", Score: 8,
	})
	require.NoError(t, err)
	rating := titleRating(t, db, title.ID)
	require.NotNil(t, rating)
	assert.Equal(t, 8.0, *rating)

	err = repo.Create(context.Background(), &models.Review{
		TitleID: title.ID, AuthorID: second.ID, Text: "meh", Score: 4,
	})
	require.NoError(t, err)
	rating = titleRating(t, db, title.ID)
	require.NotNil(t, rating)
	assert.Equal(t, 6.0, *rating)
}

func TestReviewUpdate_RecomputesRating(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db)
	first := seedUser(t, db, "first")
	second := seedUser(t, db, "second")

	review := &models.Review{TitleID: title.ID, AuthorID: first.ID, Text: "great", Score: 8}
	require.NoError(t, repo.Create(context.Background(), review))
	require.NoError(t, repo.Create(context.Background(), &models.Review{
		TitleID: title.ID, AuthorID: second.ID, Text: "meh", Score: 4,
	}))

	review.Score = 5
	require.NoError(t, repo.Update(context.Background(), review))

	rating := titleRating(t, db, title.ID)
	require.NotNil(t, rating)
	assert.Equal(t, 4.5, *rating)
}

func TestReviewDelete_RecomputesRating(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db)
	first := seedUser(t, db, "first")
	second := seedUser(t, db, "second")

	high := &models.Review{TitleID: title.ID, AuthorID: first.ID, Text: "great", Score: 8}
	low := &models.Review{TitleID: title.ID, AuthorID: second.ID, Text: "meh", Score: 4}
	require.NoError(t, repo.Create(context.Background(), high))
	require.NoError(t, repo.Create(context.Background(), low))

	require.NoError(t, repo.Delete(context.Background(), title.ID, high.ID))
	rating := titleRating(t, db, title.ID)
	require.NotNil(t, rating)
	assert.Equal(t, 4.0, *rating)

	// removing the last review unsets the rating instead of leaving zero
	require.NoError(t, repo.Delete(context.Background(), title.ID, low.ID))
	assert.Nil(t, titleRating(t, db, title.ID))
}

func TestReviewCreate_DuplicateAuthorRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db)
	author := seedUser(t, db, "author")

	require.NoError(t, repo.Create(context.Background(), &models.Review{
		TitleID: title.ID, AuthorID: author.ID, Text: "great", Score: 8,
	}))

	err := repo.Create(context.Background(), &models.Review{
		TitleID: title.ID, AuthorID: author.ID, Text: "again", Score: 2,
	})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	// rejected write left neither a row nor a rating change behind
	var count int64
	require.NoError(t, db.Model(&models.Review{}).Where("title_id = ?", title.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	rating := titleRating(t, db, title.ID)
	require.NotNil(t, rating)
	assert.Equal(t, 8.0, *rating)
}

func TestReviewCreate_UniqueIndexBackstop(t *testing.T) {
	db := newTestDB(t)
	title := seedTitle(t, db)
	author := seedUser(t, db, "author")

	require.NoError(t, db.Create(&models.Review{
		TitleID: title.ID, AuthorID: author.ID, Text: "committed first", Score: 8,
	}).Error)

	// a write racing past the pre-check hits the unique index; with error
	// translation on it surfaces as ErrDuplicatedKey, which Create maps to
	// the same sentinel as the pre-check
	err := db.Create(&models.Review{
		TitleID: title.ID, AuthorID: author.ID, Text: "raced", Score: 2,
	}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestReviewDelete_MissingReview(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db)

	err := repo.Delete(context.Background(), title.ID, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReviewGetByID_WrongTitleIsMiss(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db)
	other := &models.Title{Name: "Stalker", Year: 1979}
	require.NoError(t, db.Create(other).Error)
	author := seedUser(t, db, "author")

	review := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "great", Score: 8}
	require.NoError(t, repo.Create(context.Background(), review))

	_, err := repo.GetByID(context.Background(), other.ID, review.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByID(context.Background(), title.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", got.Author.Username)
}
