package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"moments_api/internal/metrics"
	"moments_api/internal/model"
	"moments_api/internal/permission"
	"moments_api/internal/queue"
	"moments_api/internal/repository"
	"moments_api/internal/view"
)

type LikeService struct {
	likeRepo  repository.LikeRepository
	postRepo  repository.PostRepository
	publisher queue.Publisher
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, publisher queue.Publisher) *LikeService {
	return &LikeService{
		likeRepo:  likeRepo,
		postRepo:  postRepo,
		publisher: publisher,
	}
}

// Create records that the viewer likes a post. A second like of the same post
// is rejected with model.ErrDuplicateLike.
func (s *LikeService) Create(ctx context.Context, viewer model.Viewer, req *model.CreateLikeRequest) (*view.Like, error) {
	if err := permission.RequireAuthenticated(viewer); err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, req.Post)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, invalidPK("post", req.Post)
	}

	like, outcome, err := s.likeRepo.Create(ctx, viewer.UserID, req.Post)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return nil, invalidPK("post", req.Post)
		}
		return nil, fmt.Errorf("create like: %w", err)
	}
	if outcome == model.AlreadyExists {
		metrics.DuplicateRejected(metrics.KindLike)
		return nil, model.ErrDuplicateLike
	}

	metrics.Created(metrics.KindLike)
	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "post_id": req.Post, "like_id": like.ID}).Info("Post liked")
	publish(ctx, s.publisher, queue.NewPostLikedEvent(like.ID, like.PostID, like.OwnerID))

	return s.Get(ctx, viewer, like.ID)
}

func (s *LikeService) List(ctx context.Context, viewer model.Viewer, q model.LikeQuery) ([]view.Like, int, error) {
	rows, total, err := s.likeRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return view.NewLikes(rows, viewer), total, nil
}

func (s *LikeService) Get(ctx context.Context, viewer model.Viewer, id int64) (*view.Like, error) {
	row, err := s.likeRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewLike(*row, viewer)
	return &v, nil
}

// Delete removes the viewer's own like.
func (s *LikeService) Delete(ctx context.Context, viewer model.Viewer, id int64) error {
	row, err := s.likeRepo.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.Check(permission.Delete, viewer, row.OwnerID); err != nil {
		return err
	}
	if err := s.likeRepo.Delete(ctx, id); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "like_id": id}).Info("Like removed")
	return nil
}
