package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/pkg/cache"
)

const maxFileSize = 10 << 20 // 10 MiB

// Allowed mimetypes for profile pictures
var imageMimetypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// FileService handles uploads, downloads and profile pictures. Profile
// pictures are cached in memory since they are read on nearly every page.
type FileService struct {
	fileRepo domain.FileRepository
	userRepo domain.UserRepository
	pictures *cache.Cache
	logger   *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(fileRepo domain.FileRepository, userRepo domain.UserRepository, logger *slog.Logger) *FileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{
		fileRepo: fileRepo,
		userRepo: userRepo,
		pictures: cache.New(),
		logger:   logger,
	}
}

// Upload stores a file and returns its metadata
func (s *FileService) Upload(ctx context.Context, actor Actor, filename, mimetype string, data []byte) (*domain.File, error) {
	if filename == "" {
		return nil, domain.Validation("filename is required")
	}
	if len(data) == 0 {
		return nil, domain.Validation("file is empty")
	}
	if len(data) > maxFileSize {
		return nil, domain.Validation("file exceeds maximum size of %d bytes", maxFileSize)
	}

	file := &domain.File{
		Filename: filename,
		Mimetype: mimetype,
		Size:     int64(len(data)),
		Data:     data,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file uploaded",
		slog.Int64("file_id", file.ID),
		slog.String("filename", file.Filename),
		slog.Int64("size", file.Size),
	)
	return file, nil
}

// Get returns file metadata without the blob
func (s *FileService) Get(ctx context.Context, id int64) (*domain.File, error) {
	return s.fileRepo.GetByID(ctx, id)
}

// Download returns a file with its contents
func (s *FileService) Download(ctx context.Context, id int64) (*domain.File, error) {
	return s.fileRepo.GetWithData(ctx, id)
}

// List returns metadata for all stored files. Admin only.
func (s *FileService) List(ctx context.Context, actor Actor) ([]*domain.File, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("not enough permissions")
	}
	return s.fileRepo.List(ctx)
}

// Delete removes a stored file
func (s *FileService) Delete(ctx context.Context, actor Actor, id int64) error {
	if actor.IsTenant() {
		return domain.Forbidden("not enough permissions")
	}
	if _, err := s.fileRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.fileRepo.Delete(ctx, id)
}

// SetProfilePicture uploads an image and links it to the actor's account,
// replacing any previous picture reference.
func (s *FileService) SetProfilePicture(ctx context.Context, actor Actor, filename, mimetype string, data []byte) (*domain.File, error) {
	if !imageMimetypes[mimetype] {
		return nil, domain.Validation("profile picture must be an image, got %q", mimetype)
	}

	file, err := s.Upload(ctx, actor, filename, mimetype, data)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetProfilePicture(ctx, actor.UserID, &file.ID); err != nil {
		return nil, err
	}

	s.pictures.Delete(pictureKey(actor.UserID))
	return file, nil
}

// GetProfilePicture returns the profile picture of a user, with its contents
func (s *FileService) GetProfilePicture(ctx context.Context, userID int64) (*domain.File, error) {
	if v, ok := s.pictures.Get(pictureKey(userID)); ok {
		if file, ok := v.(*domain.File); ok {
			return file, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ProfilePictureID == nil {
		return nil, domain.NotFound("user %d has no profile picture", userID)
	}

	file, err := s.fileRepo.GetWithData(ctx, *user.ProfilePictureID)
	if err != nil {
		return nil, err
	}

	s.pictures.Set(pictureKey(userID), file, 5*time.Minute)
	return file, nil
}

// RemoveProfilePicture unlinks the actor's profile picture
func (s *FileService) RemoveProfilePicture(ctx context.Context, actor Actor) error {
	if err := s.userRepo.SetProfilePicture(ctx, actor.UserID, nil); err != nil {
		return err
	}
	s.pictures.Delete(pictureKey(actor.UserID))
	return nil
}

func pictureKey(userID int64) string {
	return "picture:" + strconv.FormatInt(userID, 10)
}
