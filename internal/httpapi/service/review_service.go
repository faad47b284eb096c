package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/cache"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewExists     = errors.New("you already reviewed this title")
	ErrInvalidScore     = errors.New("score must be between 1 and 10")
	ErrNotResourceOwner = errors.New("not the author of this resource")
)

// Actor identifies the authenticated caller for permission checks.
type Actor struct {
	ID   string
	Role models.Role
}

// canModify: the author of the resource, a moderator, or an admin.
func (a Actor) canModify(authorID string) bool {
	return a.ID == authorID || a.Role.CanModerate()
}

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated, error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor Actor, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor Actor, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
	cache   *cache.Cache
}

func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository, c *cache.Cache) ReviewService {
	return &reviewService{reviews: reviews, titles: titles, cache: c}
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	list, total, err := s.reviews.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ReviewResponse, 0, len(list))
	for i := range list {
		resp = append(resp, dto.ReviewFromModel(&list[i]))
	}
	return dto.NewPaginated(total, page, pageSize, resp), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor Actor, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if in.Score < models.MinScore || in.Score > models.MaxScore {
		return nil, ErrInvalidScore
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	if err := s.invalidateTitle(ctx, titleID); err != nil {
		return nil, err
	}

	// reload with the author preloaded
	review, err := s.reviews.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor Actor, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(review.AuthorID) {
		return nil, ErrNotResourceOwner
	}

	if in.Score != nil {
		if *in.Score < models.MinScore || *in.Score > models.MaxScore {
			return nil, ErrInvalidScore
		}
		review.Score = *in.Score
	}
	if in.Text != nil {
		review.Text = *in.Text
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	if err := s.invalidateTitle(ctx, titleID); err != nil {
		return nil, err
	}

	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, titleID, reviewID int64) error {
	review, err := s.getReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !actor.canModify(review.AuthorID) {
		return ErrNotResourceOwner
	}

	if err := s.reviews.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return s.invalidateTitle(ctx, titleID)
}

func (s *reviewService) getReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titles.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

// invalidateTitle drops the cached title entry after its rating changed.
func (s *reviewService) invalidateTitle(ctx context.Context, titleID int64) error {
	return s.cache.Delete(ctx, cache.TitleKey(titleID))
}
