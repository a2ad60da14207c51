package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
	"github.com/ligapro/liga-backend/storage"
)

type CreateMemberInput struct {
	Name    string `json:"name"`
	Ranking *int   `json:"ranking,omitempty"`
	Age     *int   `json:"age,omitempty"`
	ClubID  *int   `json:"club_id,omitempty"`
}

// RankingHistoryView — ответ эндпоинта истории рейтинга: график по месяцам
// плюс последние изменения.
type RankingHistoryView struct {
	MemberID       int                          `json:"member_id"`
	Name           string                       `json:"name"`
	CurrentRanking int                          `json:"current_ranking"`
	Chart          []models.MonthlyRankingPoint `json:"chart"`
	Recent         []*models.RankingHistory     `json:"recent"`
}

type RankingHistoryPage struct {
	Entries []*models.RankingHistory `json:"entries"`
	Page    int                      `json:"page"`
	PerPage int                      `json:"per_page"`
}

type MemberService interface {
	Create(ctx context.Context, input CreateMemberInput) (*models.Member, error)
	GetByID(ctx context.Context, id int) (*models.Member, error)
	List(ctx context.Context) ([]*models.Member, error)
	// RankingHistory — динамика за последние months месяцев.
	RankingHistory(ctx context.Context, memberID, months int) (*RankingHistoryView, error)
	RankingHistoryDetailed(ctx context.Context, memberID, page, perPage int) (*RankingHistoryPage, error)
	RankingStats(ctx context.Context, memberID int) (*models.RankingStats, error)
}

type memberService struct {
	memberRepo  repositories.MemberRepository
	historyRepo repositories.RankingHistoryRepository
	uploader    storage.FileUploader
}

func NewMemberService(
	memberRepo repositories.MemberRepository,
	historyRepo repositories.RankingHistoryRepository,
	uploader storage.FileUploader,
) MemberService {
	return &memberService{
		memberRepo:  memberRepo,
		historyRepo: historyRepo,
		uploader:    uploader,
	}
}

func (s *memberService) Create(ctx context.Context, input CreateMemberInput) (*models.Member, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrMemberNameRequired
	}
	member := &models.Member{
		Name:    name,
		Ranking: models.DefaultRanking,
		Age:     input.Age,
		ClubID:  input.ClubID,
	}
	if input.Ranking != nil {
		if *input.Ranking < 0 {
			return nil, fmt.Errorf("%w: ranking must be non-negative", ErrValidationFailed)
		}
		member.Ranking = *input.Ranking
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrMemberClubInvalid) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("create member: %w", err)
	}
	return member, nil
}

func (s *memberService) GetByID(ctx context.Context, id int) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	populateMemberClubLogoURL(member, s.uploader)
	return member, nil
}

func (s *memberService) List(ctx context.Context) ([]*models.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	for _, m := range members {
		populateMemberClubLogoURL(m, s.uploader)
	}
	if members == nil {
		members = []*models.Member{}
	}
	return members, nil
}

func (s *memberService) RankingHistory(ctx context.Context, memberID, months int) (*RankingHistoryView, error) {
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if months < 1 {
		months = 12
	}
	since := time.Now().AddDate(0, -months, 0)
	entries, err := s.historyRepo.ListByMember(ctx, memberID, &since)
	if err != nil {
		return nil, fmt.Errorf("list ranking history for member %d: %w", memberID, err)
	}

	recent := entries
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return &RankingHistoryView{
		MemberID:       member.ID,
		Name:           member.Name,
		CurrentRanking: member.Ranking,
		Chart:          monthlyChart(entries, member.Ranking),
		Recent:         recent,
	}, nil
}

func (s *memberService) RankingHistoryDetailed(ctx context.Context, memberID, page, perPage int) (*RankingHistoryPage, error) {
	if _, err := s.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	entries, err := s.historyRepo.ListByMemberPaginated(ctx, memberID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("list ranking history page for member %d: %w", memberID, err)
	}
	if entries == nil {
		entries = []*models.RankingHistory{}
	}
	return &RankingHistoryPage{Entries: entries, Page: page, PerPage: perPage}, nil
}

func (s *memberService) RankingStats(ctx context.Context, memberID int) (*models.RankingStats, error) {
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByMember(ctx, memberID, nil)
	if err != nil {
		return nil, fmt.Errorf("list ranking history for member %d: %w", memberID, err)
	}

	stats := &models.RankingStats{
		CurrentRanking: member.Ranking,
		HighestRanking: member.Ranking,
		LowestRanking:  member.Ranking,
	}
	totalChange := 0
	for _, e := range entries {
		if e.Ranking > stats.HighestRanking {
			stats.HighestRanking = e.Ranking
		}
		if e.Ranking < stats.LowestRanking {
			stats.LowestRanking = e.Ranking
		}
		totalChange += e.Change
		switch {
		case e.Change > 0:
			stats.Wins++
			stats.TotalPointsGained += e.Change
			if e.Change > stats.BiggestWin {
				stats.BiggestWin = e.Change
			}
		case e.Change < 0:
			stats.Losses++
			stats.TotalPointsLost += -e.Change
			if -e.Change > stats.BiggestLoss {
				stats.BiggestLoss = -e.Change
			}
		}
		// Запись без изменения (обмен при разнице 238+) исход не определяет
		// и в счёт игр не входит.
	}
	stats.TotalGames = stats.Wins + stats.Losses
	if stats.TotalGames > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		stats.AverageChangePerGame = float64(totalChange) / float64(stats.TotalGames)
	}
	return stats, nil
}

// monthlyChart сворачивает историю в последний рейтинг каждого месяца.
// Записи приходят от новых к старым, график строится от старых к новым.
func monthlyChart(entries []*models.RankingHistory, currentRanking int) []models.MonthlyRankingPoint {
	latest := make(map[string]*models.RankingHistory)
	for _, e := range entries {
		key := e.CreatedAt.Format("2006-01")
		if existing, ok := latest[key]; !ok || e.CreatedAt.After(existing.CreatedAt) {
			latest[key] = e
		}
	}
	points := make([]models.MonthlyRankingPoint, 0, len(latest)+1)
	for key, e := range latest {
		points = append(points, models.MonthlyRankingPoint{
			Month:   key,
			Year:    e.CreatedAt.Year(),
			Ranking: e.Ranking,
			Date:    e.CreatedAt.Format("2006-01-02"),
		})
	}
	now := time.Now()
	if _, ok := latest[now.Format("2006-01")]; !ok {
		points = append(points, models.MonthlyRankingPoint{
			Month:   now.Format("2006-01"),
			Year:    now.Year(),
			Ranking: currentRanking,
			Date:    now.Format("2006-01-02"),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points
}
