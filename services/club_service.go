package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
	"github.com/ligapro/liga-backend/storage"
)

type CreateClubInput struct {
	Name string  `json:"name"`
	City *string `json:"city,omitempty"`
}

type ClubService interface {
	Create(ctx context.Context, input CreateClubInput) (*models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Club, error)
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader, logger *slog.Logger) ClubService {
	return &clubService{clubRepo: clubRepo, uploader: uploader, logger: logger}
}

func (s *clubService) Create(ctx context.Context, input CreateClubInput) (*models.Club, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrClubNameRequired
	}
	club := &models.Club{Name: name, City: input.City}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) List(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	for _, c := range clubs {
		populateClubLogoURL(c, s.uploader)
	}
	if clubs == nil {
		clubs = []*models.Club{}
	}
	return clubs, nil
}

func (s *clubService) UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Club, error) {
	club, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	oldKey := club.LogoKey
	key := fmt.Sprintf("clubs/%d/logo_%d%s", id, time.Now().UnixNano(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("upload club logo: %w", err)
	}
	if err := s.clubRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("save club logo key: %w", err)
	}
	if oldKey != nil && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete previous club logo",
				slog.Int("club_id", id),
				slog.String("key", *oldKey),
				slog.Any("error", delErr))
		}
	}
	club.LogoKey = &key
	club.LogoURL = nil
	populateClubLogoURL(club, s.uploader)
	return club, nil
}
