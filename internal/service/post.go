package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"moments_api/internal/metrics"
	"moments_api/internal/model"
	"moments_api/internal/permission"
	"moments_api/internal/queue"
	"moments_api/internal/repository"
	"moments_api/internal/view"
)

type PostService struct {
	postRepo     repository.PostRepository
	likeRepo     repository.LikeRepository
	media        *MediaService
	publisher    queue.Publisher
	defaultImage string
}

func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	media *MediaService,
	publisher queue.Publisher,
	defaultImage string,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		likeRepo:     likeRepo,
		media:        media,
		publisher:    publisher,
		defaultImage: defaultImage,
	}
}

// Create validates the request, stores the optional image and inserts the
// post. The image is checked before anything is written, so a rejected image
// never leaves a post behind.
func (s *PostService) Create(ctx context.Context, viewer model.Viewer, req *model.PostRequest, image *model.ImageUpload) (*view.Post, error) {
	if err := permission.RequireAuthenticated(viewer); err != nil {
		return nil, err
	}

	post := &model.Post{
		OwnerID:     viewer.UserID,
		Image:       s.defaultImage,
		ImageFilter: model.DefaultImageFilter,
	}
	if err := applyPostRequest(post, req); err != nil {
		return nil, err
	}

	if image != nil {
		result, err := s.media.UploadPostImage(ctx, image)
		if err != nil {
			return nil, err
		}
		post.Image = result.URL
		post.ImageKey = &result.Key
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.media.Remove(ctx, post.ImageKey)
		return nil, fmt.Errorf("create post: %w", err)
	}

	metrics.Created(metrics.KindPost)
	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "post_id": post.ID}).Info("Post created")
	publish(ctx, s.publisher, queue.NewPostCreatedEvent(post.ID, post.OwnerID))

	return s.Get(ctx, viewer, post.ID)
}

// List returns one page of posts projected for the viewer and the total count.
func (s *PostService) List(ctx context.Context, viewer model.Viewer, q model.PostQuery) ([]view.Post, int, error) {
	rows, total, err := s.postRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	postIDs := make([]int64, len(rows))
	for i, row := range rows {
		postIDs[i] = row.ID
	}
	likeIDs, err := s.likeIDs(ctx, viewer, postIDs)
	if err != nil {
		return nil, 0, err
	}

	return view.NewPosts(rows, viewer, likeIDs), total, nil
}

func (s *PostService) Get(ctx context.Context, viewer model.Viewer, id int64) (*view.Post, error) {
	row, err := s.postRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	likeIDs, err := s.likeIDs(ctx, viewer, []int64{id})
	if err != nil {
		return nil, err
	}

	v := view.NewPost(*row, viewer, likeIDs)
	return &v, nil
}

// Authorize checks that the viewer may perform action on the post without
// changing it, so callers can refuse a request before reading its body.
func (s *PostService) Authorize(ctx context.Context, viewer model.Viewer, id int64, action permission.Action) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return permission.Check(action, viewer, post.OwnerID)
}

// Update replaces the writable fields of the viewer's own post. Omitted
// optional fields keep their current values.
func (s *PostService) Update(ctx context.Context, viewer model.Viewer, id int64, req *model.PostRequest, image *model.ImageUpload) (*view.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(permission.Update, viewer, post.OwnerID); err != nil {
		return nil, err
	}
	if err := applyPostRequest(post, req); err != nil {
		return nil, err
	}

	oldKey := post.ImageKey
	var uploadedKey *string
	if image != nil {
		result, err := s.media.UploadPostImage(ctx, image)
		if err != nil {
			return nil, err
		}
		post.Image = result.URL
		post.ImageKey = &result.Key
		uploadedKey = &result.Key
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		s.media.Remove(ctx, uploadedKey)
		return nil, err
	}
	if uploadedKey != nil {
		s.media.Remove(ctx, oldKey)
	}

	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "post_id": id}).Info("Post updated")
	return s.Get(ctx, viewer, id)
}

// Delete removes the viewer's own post with its comments and likes.
func (s *PostService) Delete(ctx context.Context, viewer model.Viewer, id int64) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.Check(permission.Delete, viewer, post.OwnerID); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.media.Remove(ctx, post.ImageKey)

	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "post_id": id}).Info("Post deleted")
	publish(ctx, s.publisher, queue.NewPostDeletedEvent(id, post.OwnerID))
	return nil
}

func (s *PostService) likeIDs(ctx context.Context, viewer model.Viewer, postIDs []int64) (map[int64]int64, error) {
	if !viewer.Authenticated || len(postIDs) == 0 {
		return nil, nil
	}
	ids, err := s.likeRepo.IDsForPosts(ctx, viewer.UserID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup like ids: %w", err)
	}
	return ids, nil
}

func applyPostRequest(post *model.Post, req *model.PostRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.NewValidationError("title", "This field is required.")
	}
	if utf8.RuneCountInString(title) > model.MaxPostTitleLength {
		return model.NewValidationError("title",
			fmt.Sprintf("Ensure this field has no more than %d characters.", model.MaxPostTitleLength))
	}
	post.Title = title

	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.ImageFilter != nil {
		if !model.IsImageFilter(*req.ImageFilter) {
			return model.NewValidationError("image_filter",
				fmt.Sprintf("%q is not a valid choice.", *req.ImageFilter))
		}
		post.ImageFilter = *req.ImageFilter
	}
	return nil
}
