package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"moments_api/internal/model"
	"moments_api/internal/permission"
	"moments_api/internal/repository"
	"moments_api/internal/view"
)

// ProfileService reads and edits profiles. Profiles are never created or
// deleted directly; they follow the lifecycle of their user.
type ProfileService struct {
	profiles  repository.ProfileRepository
	followers repository.FollowerRepository
	media     *MediaService
}

func NewProfileService(profiles repository.ProfileRepository, followers repository.FollowerRepository, media *MediaService) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		followers: followers,
		media:     media,
	}
}

// List returns one page of profiles projected for the viewer and the total count.
func (s *ProfileService) List(ctx context.Context, viewer model.Viewer, q model.ProfileQuery) ([]view.Profile, int, error) {
	rows, total, err := s.profiles.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	ownerIDs := make([]int64, len(rows))
	for i, row := range rows {
		ownerIDs[i] = row.OwnerID
	}
	following, err := s.followingIDs(ctx, viewer, ownerIDs)
	if err != nil {
		return nil, 0, err
	}

	return view.NewProfiles(rows, viewer, following), total, nil
}

func (s *ProfileService) Get(ctx context.Context, viewer model.Viewer, id int64) (*view.Profile, error) {
	row, err := s.profiles.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	following, err := s.followingIDs(ctx, viewer, []int64{row.OwnerID})
	if err != nil {
		return nil, err
	}

	v := view.NewProfile(*row, viewer, following)
	return &v, nil
}

// Authorize checks that the viewer may perform action on the profile.
func (s *ProfileService) Authorize(ctx context.Context, viewer model.Viewer, id int64, action permission.Action) error {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return permission.Check(action, viewer, profile.OwnerID)
}

// Update edits the viewer's own profile. A new image replaces the old one in
// the media store.
func (s *ProfileService) Update(ctx context.Context, viewer model.Viewer, id int64, req *model.UpdateProfileRequest, image *model.ImageUpload) (*view.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(permission.Update, viewer, profile.OwnerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if utf8.RuneCountInString(name) > model.MaxProfileNameLength {
			return nil, model.NewValidationError("name",
				fmt.Sprintf("Ensure this field has no more than %d characters.", model.MaxProfileNameLength))
		}
		profile.Name = name
	}
	if req.Content != nil {
		profile.Content = *req.Content
	}

	oldKey := profile.ImageKey
	var uploadedKey *string
	if image != nil {
		result, err := s.media.UploadProfileImage(ctx, image)
		if err != nil {
			return nil, err
		}
		profile.Image = result.URL
		profile.ImageKey = &result.Key
		uploadedKey = &result.Key
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		s.media.Remove(ctx, uploadedKey)
		return nil, err
	}
	if uploadedKey != nil {
		s.media.Remove(ctx, oldKey)
	}

	logrus.WithFields(logrus.Fields{"user_id": viewer.UserID, "profile_id": id}).Info("Profile updated")
	return s.Get(ctx, viewer, id)
}

// followingIDs looks up the viewer's follower edges toward ownerIDs.
func (s *ProfileService) followingIDs(ctx context.Context, viewer model.Viewer, ownerIDs []int64) (map[int64]int64, error) {
	if !viewer.Authenticated || len(ownerIDs) == 0 {
		return nil, nil
	}
	ids, err := s.followers.IDsForFollowed(ctx, viewer.UserID, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup following ids: %w", err)
	}
	return ids, nil
}
