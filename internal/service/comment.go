package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"moments_api/internal/metrics"
	"moments_api/internal/model"
	"moments_api/internal/permission"
	"moments_api/internal/queue"
	"moments_api/internal/repository"
	"moments_api/internal/view"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		publisher:   publisher,
	}
}

// Create adds a comment by the viewer to an existing post.
func (s *CommentService) Create(ctx context.Context, viewer model.Viewer, req *model.CreateCommentRequest) (*view.Comment, error) {
	if err := permission.RequireAuthenticated(viewer); err != nil {
		return nil, err
	}
	if err := validateCommentContent(req.Content); err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, req.Post)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, invalidPK("post", req.Post)
	}

	comment := &model.Comment{
		OwnerID: viewer.UserID,
		PostID:  req.Post,
		Content: req.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		// The post was deleted between the check and the insert.
		if errors.Is(err, model.ErrPostNotFound) {
			return nil, invalidPK("post", req.Post)
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	metrics.Created(metrics.KindComment)
	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "post_id": req.Post, "comment_id": comment.ID}).Info("Comment created")
	publish(ctx, s.publisher, queue.NewCommentCreatedEvent(comment.ID, comment.PostID, comment.OwnerID))

	return s.Get(ctx, viewer, comment.ID)
}

func (s *CommentService) List(ctx context.Context, viewer model.Viewer, q model.CommentQuery) ([]view.Comment, int, error) {
	rows, total, err := s.commentRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return view.NewComments(rows, viewer), total, nil
}

func (s *CommentService) Get(ctx context.Context, viewer model.Viewer, id int64) (*view.Comment, error) {
	row, err := s.commentRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewComment(*row, viewer)
	return &v, nil
}

// Update rewrites the content of the viewer's own comment.
func (s *CommentService) Update(ctx context.Context, viewer model.Viewer, id int64, req *model.UpdateCommentRequest) (*view.Comment, error) {
	row, err := s.commentRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(permission.Update, viewer, row.OwnerID); err != nil {
		return nil, err
	}
	if err := validateCommentContent(req.Content); err != nil {
		return nil, err
	}

	comment := row.Comment
	comment.Content = req.Content
	if err := s.commentRepo.Update(ctx, &comment); err != nil {
		return nil, err
	}

	row.Comment = comment
	v := view.NewComment(*row, viewer)
	return &v, nil
}

func (s *CommentService) Delete(ctx context.Context, viewer model.Viewer, id int64) error {
	row, err := s.commentRepo.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.Check(permission.Delete, viewer, row.OwnerID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "comment_id": id}).Info("Comment deleted")
	return nil
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return model.NewValidationError("content", "This field may not be blank.")
	}
	return nil
}

// invalidPK reports a reference to an entity that does not exist. A zero id
// means the field was left out.
func invalidPK(field string, id int64) error {
	if id == 0 {
		return model.NewValidationError(field, "This field is required.")
	}
	return model.NewValidationError(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
}
