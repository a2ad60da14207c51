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

type CreateTournamentInput struct {
	Name               string                 `json:"name"`
	ClubID             *int                   `json:"club_id,omitempty"`
	EliminationType    models.EliminationType `json:"elimination_type"`
	SeedingType        models.SeedingType     `json:"seeding_type"`
	ParticipantsNumber int                    `json:"participants_number"`
	GroupsNumber       int                    `json:"groups_number"`
	AdvancersPerGroup  int                    `json:"advancers_per_group"`
	Rounds             int                    `json:"rounds"`
	AffectsRanking     *bool                  `json:"affects_ranking,omitempty"`
	Date               *time.Time             `json:"date,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	// RegisterMember добавляет участника в заявку турнира.
	RegisterMember(ctx context.Context, tournamentID, memberID int) error
	ListMembers(ctx context.Context, tournamentID int) ([]*models.Member, error)
	UploadMainImage(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	memberRepo     repositories.MemberRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	memberRepo repositories.MemberRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		memberRepo:     memberRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameMissing
	}
	if !input.EliminationType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEliminationType, input.EliminationType)
	}
	seeding := input.SeedingType
	if seeding == "" {
		seeding = models.SeedingSequential
	}
	if !seeding.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeedingType, seeding)
	}

	tournament := &models.Tournament{
		Name:               name,
		ClubID:             input.ClubID,
		EliminationType:    input.EliminationType,
		SeedingType:        seeding,
		ParticipantsNumber: input.ParticipantsNumber,
		GroupsNumber:       input.GroupsNumber,
		AdvancersPerGroup:  input.AdvancersPerGroup,
		Rounds:             input.Rounds,
		AffectsRanking:     true,
		Status:             models.TournamentStatusRegistration,
		Date:               time.Now(),
	}
	if input.AffectsRanking != nil {
		tournament.AffectsRanking = *input.AffectsRanking
	}
	if input.Date != nil {
		tournament.Date = *input.Date
	}
	if tournament.Rounds < 1 {
		tournament.Rounds = 1
	}
	if tournament.EliminationType.HasGroupPhase() {
		if tournament.GroupsNumber < 1 {
			tournament.GroupsNumber = 2
		}
		if tournament.AdvancersPerGroup < 1 {
			tournament.AdvancersPerGroup = 2
		}
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	populateTournamentImageURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	for _, t := range tournaments {
		populateTournamentImageURL(t, s.uploader)
	}
	if tournaments == nil {
		tournaments = []*models.Tournament{}
	}
	return tournaments, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tournament %d: %w", id, err)
	}
	// Картинка в хранилище удаляется после записи в БД; сбой не критичен.
	if tournament.MainImageKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *tournament.MainImageKey); delErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete tournament image",
				slog.Int("tournament_id", id),
				slog.String("key", *tournament.MainImageKey),
				slog.Any("error", delErr))
		}
	}
	return nil
}

func (s *tournamentService) RegisterMember(ctx context.Context, tournamentID, memberID int) error {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return err
	}
	if err := s.memberRepo.Register(ctx, tournamentID, memberID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return ErrRegistrationConflict
		case errors.Is(err, repositories.ErrMemberNotFound):
			return ErrMemberNotFound
		}
		return fmt.Errorf("register member %d for tournament %d: %w", memberID, tournamentID, err)
	}
	return nil
}

func (s *tournamentService) ListMembers(ctx context.Context, tournamentID int) ([]*models.Member, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list members of tournament %d: %w", tournamentID, err)
	}
	for _, m := range members {
		populateMemberClubLogoURL(m, s.uploader)
	}
	if members == nil {
		members = []*models.Member{}
	}
	return members, nil
}

func (s *tournamentService) UploadMainImage(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
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
	oldKey := tournament.MainImageKey
	key := fmt.Sprintf("tournaments/%d/main_%d%s", id, time.Now().UnixNano(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("upload tournament image: %w", err)
	}
	if err := s.tournamentRepo.UpdateImageKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("save tournament image key: %w", err)
	}
	if oldKey != nil && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete previous tournament image",
				slog.Int("tournament_id", id),
				slog.String("key", *oldKey),
				slog.Any("error", delErr))
		}
	}
	tournament.MainImageKey = &key
	tournament.MainImageURL = nil
	populateTournamentImageURL(tournament, s.uploader)
	return tournament, nil
}
