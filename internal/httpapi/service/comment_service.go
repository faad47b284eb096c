package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentService interface {
	ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository) CommentService {
	return &commentService{comments: comments, reviews: reviews}
}

func (s *commentService) ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	list, total, err := s.comments.ListByReview(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CommentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, dto.CommentFromModel(&list[i]))
	}
	return dto.NewPaginated(total, page, pageSize, resp), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.getComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, actor Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	// reload with the author preloaded
	comment, err := s.comments.GetByID(ctx, titleID, reviewID, comment.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, actor Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	comment, err := s.getComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(comment.AuthorID) {
		return nil, ErrNotResourceOwner
	}

	comment.Text = text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, actor Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.getComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !actor.canModify(comment.AuthorID) {
		return ErrNotResourceOwner
	}
	return s.comments.Delete(ctx, comment)
}

func (s *commentService) getComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, titleID, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

// requireReview confirms the review exists under the title, so comments on a
// mismatched review/title pair are a 404, not an orphan write.
func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviews.GetByID(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}
