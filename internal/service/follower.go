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

type FollowerService struct {
	followerRepo repository.FollowerRepository
	userRepo     repository.UserRepository
	publisher    queue.Publisher
}

func NewFollowerService(followerRepo repository.FollowerRepository, userRepo repository.UserRepository, publisher queue.Publisher) *FollowerService {
	return &FollowerService{
		followerRepo: followerRepo,
		userRepo:     userRepo,
		publisher:    publisher,
	}
}

// Create makes the viewer follow another user. Following oneself is allowed;
// following the same user twice is rejected with model.ErrDuplicateFollow.
func (s *FollowerService) Create(ctx context.Context, viewer model.Viewer, req *model.CreateFollowerRequest) (*view.Follower, error) {
	if err := permission.RequireAuthenticated(viewer); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.Exists(ctx, req.Followed)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return nil, invalidPK("followed", req.Followed)
	}

	follower, outcome, err := s.followerRepo.Create(ctx, viewer.UserID, req.Followed)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, invalidPK("followed", req.Followed)
		}
		return nil, fmt.Errorf("create follower: %w", err)
	}
	if outcome == model.AlreadyExists {
		metrics.DuplicateRejected(metrics.KindFollower)
		return nil, model.ErrDuplicateFollow
	}

	metrics.Created(metrics.KindFollower)
	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "followed_id": req.Followed}).Info("User followed")
	publish(ctx, s.publisher, queue.NewUserFollowedEvent(follower.ID, follower.OwnerID, follower.FollowedID))

	return s.Get(ctx, viewer, follower.ID)
}

func (s *FollowerService) List(ctx context.Context, viewer model.Viewer, q model.FollowerQuery) ([]view.Follower, int, error) {
	rows, total, err := s.followerRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return view.NewFollowers(rows, viewer), total, nil
}

func (s *FollowerService) Get(ctx context.Context, viewer model.Viewer, id int64) (*view.Follower, error) {
	row, err := s.followerRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewFollower(*row, viewer)
	return &v, nil
}

// Delete removes the viewer's own follow edge.
func (s *FollowerService) Delete(ctx context.Context, viewer model.Viewer, id int64) error {
	row, err := s.followerRepo.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.Check(permission.Delete, viewer, row.OwnerID); err != nil {
		return err
	}
	if err := s.followerRepo.Delete(ctx, id); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "follower_id": id}).Info("User unfollowed")
	return nil
}
