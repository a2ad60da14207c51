package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ligapro/liga-backend/brackets"
	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
	"github.com/ligapro/liga-backend/storage"
)

type GenerateBracketInput struct {
	// SeedingType переопределяет стратегию рассева, сохранённую у турнира.
	SeedingType *models.SeedingType
	// ParticipantsNumber ограничивает число участников группового этапа.
	ParticipantsNumber *int
}

type BracketService interface {
	// GenerateBracket строит сетку с нуля: все существующие игры турнира
	// удаляются и заменяются новым набором в одной транзакции.
	GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput) ([]*models.Game, error)
	GetBracket(ctx context.Context, tournamentID int) ([]*models.Game, error)
}

type bracketService struct {
	tx             txRunner
	tournamentRepo repositories.TournamentRepository
	memberRepo     repositories.MemberRepository
	gameRepo       repositories.GameRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	memberRepo repositories.MemberRepository,
	gameRepo repositories.GameRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:             txRunner{db: db},
		tournamentRepo: tournamentRepo,
		memberRepo:     memberRepo,
		gameRepo:       gameRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput) ([]*models.Game, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}

	if input.SeedingType != nil {
		if !input.SeedingType.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSeedingType, *input.SeedingType)
		}
		tournament.SeedingType = *input.SeedingType
	}
	if input.ParticipantsNumber != nil {
		tournament.ParticipantsNumber = *input.ParticipantsNumber
	}

	members, err := s.memberRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list registered members for tournament %d: %w", tournamentID, err)
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, len(members))
	}

	if err := validateBracketConfig(tournament, len(members)); err != nil {
		return nil, err
	}

	seeded := brackets.SortMembers(members, tournament.SeedingType)

	generator, err := brackets.ForEliminationType(tournament.EliminationType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEliminationType, tournament.EliminationType)
	}

	games, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Tournament: tournament,
		Members:    seeded,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s bracket for tournament %d: %w", generator.GetName(), tournamentID, err)
	}

	// Замена сетки: удаление старых игр и вставка новых атомарны,
	// частично перегенерированная сетка невозможна.
	err = s.tx.run(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.gameRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("clear existing games: %w", err)
		}
		for _, game := range games {
			if err := s.gameRepo.Create(ctx, exec, game); err != nil {
				return fmt.Errorf("insert game: %w", err)
			}
		}
		if tournament.Status != models.TournamentStatusActive {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentStatusActive); err != nil {
				return fmt.Errorf("activate tournament: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "bracket generated",
			slog.Int("tournament_id", tournamentID),
			slog.String("generator", generator.GetName()),
			slog.Int("games", len(games)),
			slog.Int("participants", len(seeded)))
	}
	return games, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) ([]*models.Game, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	games, err := s.gameRepo.ListByTournamentWithMembers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list games for tournament %d: %w", tournamentID, err)
	}
	for _, game := range games {
		populateMemberClubLogoURL(game.Member1, s.uploader)
		populateMemberClubLogoURL(game.Member2, s.uploader)
	}
	if games == nil {
		games = []*models.Game{}
	}
	return games, nil
}

// validateBracketConfig проверяет согласованность конфигурации до генерации.
// Каждая ошибка оборачивает ErrBracketConfigInvalid и называет нарушенное правило.
func validateBracketConfig(t *models.Tournament, registered int) error {
	if !t.EliminationType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEliminationType, t.EliminationType)
	}
	if !t.SeedingType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSeedingType, t.SeedingType)
	}
	if t.Rounds < 1 || t.Rounds > 2 {
		return fmt.Errorf("%w: rounds must be 1 or 2, got %d", ErrBracketConfigInvalid, t.Rounds)
	}
	if !t.EliminationType.HasGroupPhase() {
		return nil
	}

	groups := t.GroupsNumber
	advancers := t.AdvancersPerGroup
	participants := t.ParticipantsNumber
	if participants <= 0 || participants > registered {
		participants = registered
	}
	if groups < 2 {
		return fmt.Errorf("%w: at least 2 groups are required, got %d", ErrBracketConfigInvalid, groups)
	}
	if advancers < 1 {
		return fmt.Errorf("%w: at least 1 advancer per group is required, got %d", ErrBracketConfigInvalid, advancers)
	}
	if participants < groups*2 {
		return fmt.Errorf("%w: %d participants cannot fill %d groups of at least 2 players", ErrBracketConfigInvalid, participants, groups)
	}
	perGroup := participants / groups
	if advancers >= perGroup {
		return fmt.Errorf("%w: %d advancers per group must be less than the group size %d", ErrBracketConfigInvalid, advancers, perGroup)
	}
	return nil
}
