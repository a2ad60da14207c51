package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
	"github.com/ligapro/liga-backend/storage"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	// GetFinalStandings строит итоговую таблицу турнира. Доступна только
	// после завершения всех игр, иначе возвращается ErrTournamentNotFinished.
	GetFinalStandings(ctx context.Context, tournamentID int) ([]models.Standing, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	historyRepo    repositories.RankingHistoryRepository
	uploader       storage.FileUploader
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	historyRepo repositories.RankingHistoryRepository,
	uploader storage.FileUploader,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		historyRepo:    historyRepo,
		uploader:       uploader,
	}
}

func (s *standingsService) GetFinalStandings(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	games, err := s.gameRepo.ListByTournamentWithMembers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list games for tournament %d: %w", tournamentID, err)
	}
	if len(games) == 0 {
		return nil, ErrTournamentNotFinished
	}
	for _, game := range games {
		if game.Status == models.GameStatusCompleted {
			continue
		}
		// Автопроход сыгран быть не может и итогам не мешает.
		if game.HasBothMembers() || game.Status == models.GameStatusWaitingForGroups {
			return nil, ErrTournamentNotFinished
		}
	}

	rows := make(map[int]*models.Standing)
	order := make([]int, 0)
	row := func(member *models.Member) *models.Standing {
		if st, ok := rows[member.ID]; ok {
			return st
		}
		populateClubLogoURL(member.Club, s.uploader)
		st := &models.Standing{
			MemberID: member.ID,
			Name:     member.Name,
			Ranking:  member.Ranking,
			Club:     member.Club,
		}
		rows[member.ID] = st
		order = append(order, member.ID)
		return st
	}

	// Очки: победа 3, ничья 1, поражение 0.
	for _, game := range games {
		if game.Status != models.GameStatusCompleted || game.Member1 == nil || game.Member2 == nil {
			continue
		}
		st1 := row(game.Member1)
		st2 := row(game.Member2)
		st1.GamesPlayed++
		st2.GamesPlayed++
		switch {
		case game.WinnerID == nil:
			st1.Draws++
			st2.Draws++
			st1.Points++
			st2.Points++
		case *game.WinnerID == game.Member1.ID:
			st1.Wins++
			st1.Points += 3
			st2.Losses++
		default:
			st2.Wins++
			st2.Points += 3
			st1.Losses++
		}
	}

	if len(rows) == 0 {
		return nil, ErrTournamentNotFinished
	}

	// Изменение рейтинга за турнир: первая и последняя записи истории
	// участника в рамках этого турнира, загружаются параллельно.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range order {
		st := rows[id]
		g.Go(func() error {
			first, err := s.historyRepo.FirstInTournament(gctx, st.MemberID, tournament.ID)
			if err != nil {
				return fmt.Errorf("first ranking entry for member %d: %w", st.MemberID, err)
			}
			if first == nil {
				st.InitialRanking = st.Ranking
				st.FinalRanking = st.Ranking
				return nil
			}
			last, err := s.historyRepo.LastInTournament(gctx, st.MemberID, tournament.ID)
			if err != nil {
				return fmt.Errorf("last ranking entry for member %d: %w", st.MemberID, err)
			}
			st.InitialRanking = first.PreviousRanking
			st.FinalRanking = last.Ranking
			st.RankingChange = intPtr(last.Ranking - first.PreviousRanking)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	standings := make([]models.Standing, 0, len(rows))
	for _, id := range order {
		standings = append(standings, *rows[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.MemberID < b.MemberID
	})
	return standings, nil
}
