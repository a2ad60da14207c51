package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
)

var ErrGameNotScored = errors.New("game has no recorded winner, ranking cannot be updated")

// ExchangeRule — одна строка обменной таблицы: для диапазона разницы рейтингов
// задаёт, сколько очков переходит от проигравшего к победителю.
type ExchangeRule struct {
	MinDiff    int `json:"min_diff"`
	MaxDiff    int `json:"max_diff"` // math.MaxInt для последней строки
	Expected   int `json:"expected_result"`
	Unexpected int `json:"unexpected_result"`
}

// Обменная таблица настольного тенниса. Результат считается ожидаемым, когда
// победил игрок с большим или равным рейтингом.
var exchangeTable = []ExchangeRule{
	{0, 12, 8, 8},
	{13, 37, 7, 10},
	{38, 62, 6, 13},
	{63, 87, 5, 16},
	{88, 112, 4, 20},
	{113, 137, 3, 25},
	{138, 162, 2, 30},
	{163, 187, 2, 35},
	{188, 212, 1, 40},
	{213, 237, 1, 45},
	{238, math.MaxInt, 0, 50},
}

// ExchangePoints возвращает количество очков обмена для данной разницы рейтингов.
func ExchangePoints(rankingDiff int, expectedResult bool) int {
	if rankingDiff < 0 {
		rankingDiff = -rankingDiff
	}
	for _, rule := range exchangeTable {
		if rankingDiff >= rule.MinDiff && rankingDiff <= rule.MaxDiff {
			if expectedResult {
				return rule.Expected
			}
			return rule.Unexpected
		}
	}
	return 0
}

type RankingService interface {
	// ProcessGameResult применяет обмен очками по завершённой игре и пишет
	// историю рейтинга обоих игроков. Возвращает сводку изменений.
	ProcessGameResult(ctx context.Context, game *models.Game, tournament *models.Tournament) (*models.RankingUpdate, error)
	SystemRules() []ExchangeRule
}

type rankingService struct {
	tx          txRunner
	memberRepo  repositories.MemberRepository
	historyRepo repositories.RankingHistoryRepository
}

func NewRankingService(
	db *sql.DB,
	memberRepo repositories.MemberRepository,
	historyRepo repositories.RankingHistoryRepository,
) RankingService {
	return &rankingService{
		tx:          txRunner{db: db},
		memberRepo:  memberRepo,
		historyRepo: historyRepo,
	}
}

func (s *rankingService) SystemRules() []ExchangeRule {
	rules := make([]ExchangeRule, len(exchangeTable))
	copy(rules, exchangeTable)
	return rules
}

func (s *rankingService) ProcessGameResult(ctx context.Context, game *models.Game, tournament *models.Tournament) (*models.RankingUpdate, error) {
	if game.Status != models.GameStatusCompleted || game.WinnerID == nil {
		return nil, ErrGameNotScored
	}
	if tournament != nil && !tournament.AffectsRanking {
		return nil, nil
	}

	winnerID := *game.WinnerID
	var loserID int
	switch {
	case game.Member1ID != nil && *game.Member1ID != winnerID:
		loserID = *game.Member1ID
	case game.Member2ID != nil && *game.Member2ID != winnerID:
		loserID = *game.Member2ID
	default:
		return nil, fmt.Errorf("%w: winner %d is not one of the game slots", ErrGameNotScored, winnerID)
	}

	winner, err := s.memberRepo.GetByID(ctx, winnerID)
	if err != nil {
		return nil, s.mapMemberError(err)
	}
	loser, err := s.memberRepo.GetByID(ctx, loserID)
	if err != nil {
		return nil, s.mapMemberError(err)
	}

	diff := winner.Ranking - loser.Ranking
	if diff < 0 {
		diff = -diff
	}
	expected := winner.Ranking >= loser.Ranking
	points := ExchangePoints(diff, expected)

	// Обмен симметричен: проигравший теряет ровно столько, сколько
	// получает победитель, даже если рейтинг уходит ниже нуля.
	newWinnerRanking := winner.Ranking + points
	newLoserRanking := loser.Ranking - points

	var tournamentID *int
	if tournament != nil {
		tournamentID = intPtr(tournament.ID)
	}

	err = s.tx.run(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.memberRepo.UpdateRanking(ctx, exec, winner.ID, newWinnerRanking); err != nil {
			return fmt.Errorf("update winner ranking: %w", err)
		}
		if err := s.memberRepo.UpdateRanking(ctx, exec, loser.ID, newLoserRanking); err != nil {
			return fmt.Errorf("update loser ranking: %w", err)
		}
		entries := []*models.RankingHistory{
			{
				MemberID:        winner.ID,
				Ranking:         newWinnerRanking,
				PreviousRanking: winner.Ranking,
				Change:          newWinnerRanking - winner.Ranking,
				GameID:          intPtr(game.ID),
				TournamentID:    tournamentID,
				Reason:          models.RankingReasonGameResult,
			},
			{
				MemberID:        loser.ID,
				Ranking:         newLoserRanking,
				PreviousRanking: loser.Ranking,
				Change:          newLoserRanking - loser.Ranking,
				GameID:          intPtr(game.ID),
				TournamentID:    tournamentID,
				Reason:          models.RankingReasonGameResult,
			},
		}
		for _, entry := range entries {
			if err := s.historyRepo.Create(ctx, exec, entry); err != nil {
				return fmt.Errorf("write ranking history for member %d: %w", entry.MemberID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.RankingUpdate{
		Winner: models.RankingUpdateSide{
			ID:         winner.ID,
			Name:       winner.Name,
			OldRanking: winner.Ranking,
			NewRanking: newWinnerRanking,
			Change:     newWinnerRanking - winner.Ranking,
		},
		Loser: models.RankingUpdateSide{
			ID:         loser.ID,
			Name:       loser.Name,
			OldRanking: loser.Ranking,
			NewRanking: newLoserRanking,
			Change:     newLoserRanking - loser.Ranking,
		},
		RankingDifference: diff,
		ExpectedResult:    expected,
		ExchangePoints:    points,
	}, nil
}

func (s *rankingService) mapMemberError(err error) error {
	if errors.Is(err, repositories.ErrMemberNotFound) {
		return ErrMemberNotFound
	}
	return err
}
