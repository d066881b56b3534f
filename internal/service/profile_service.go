package service

import (
	"context"
	"errors"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/repository"
	"fitbuddy/app/internal/storage"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidAvatarType = errors.New("avatar must be an image")
	ErrAvatarKeyForeign  = errors.New("object key does not belong to this user")
	ErrAvatarNotUploaded = errors.New("avatar has not been uploaded yet")
	ErrUploadURLError    = errors.New("failed to generate upload URL")
)

const avatarPrefix = "avatars"

// UploadURLResponse is returned to the client before it PUTs the file.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // sent back on confirm
}

// Profile is the user plus a temporary avatar URL.
type Profile struct {
	User      *domain.User
	AvatarURL string
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error)
	UpdateName(ctx context.Context, userID primitive.ObjectID, name string) error
	RequestAvatarUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) (*Profile, error)
}

type profileService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

func NewProfileService(userRepo repository.UserRepository, fileStorage storage.FileStorage) ProfileService {
	return &profileService{userRepo: userRepo, fileStorage: fileStorage}
}

func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &domain.PersistenceError{Op: "lookup user", Err: err}
	}
	user.PasswordHash = ""

	profile := &Profile{User: user}
	if user.AvatarKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, user.AvatarKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			// Profile is still usable without the picture.
			log.Printf("WARN: Avatar URL for user %s unavailable: %v", userID.Hex(), err)
		} else {
			profile.AvatarURL = url
		}
	}
	return profile, nil
}

func (s *profileService) UpdateName(ctx context.Context, userID primitive.ObjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrInvalidInput)
	}
	if err := s.userRepo.UpdateName(ctx, userID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return &domain.PersistenceError{Op: "update name", Err: err}
	}
	return nil
}

// RequestAvatarUploadURL hands out a presigned PUT for a fresh object key
// under the user's prefix.
func (s *profileService) RequestAvatarUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrInvalidAvatarType
	}

	key := path.Join(avatarPrefix, userID.Hex(), uuid.NewString()+imageExtension(contentType))
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: url, ObjectKey: key}, nil
}

// ConfirmAvatar points the user at an uploaded object and deletes the previous one.
func (s *profileService) ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) (*Profile, error) {
	if !strings.HasPrefix(objectKey, path.Join(avatarPrefix, userID.Hex())+"/") {
		return nil, ErrAvatarKeyForeign
	}
	exists, err := s.fileStorage.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("check avatar upload: %w", err)
	}
	if !exists {
		return nil, ErrAvatarNotUploaded
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &domain.PersistenceError{Op: "lookup user", Err: err}
	}
	previous := user.AvatarKey

	if err := s.userRepo.UpdateAvatarKey(ctx, userID, objectKey); err != nil {
		return nil, &domain.PersistenceError{Op: "update avatar", Err: err}
	}
	if previous != "" && previous != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, previous); err != nil {
			log.Printf("WARN: Old avatar %s of user %s not deleted: %v", previous, userID.Hex(), err)
		}
	}
	return s.GetProfile(ctx, userID)
}

func imageExtension(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
