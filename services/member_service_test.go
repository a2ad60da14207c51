package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ligapro/liga-backend/models"
)

func TestRankingStats(t *testing.T) {
	ctx := context.Background()
	members := newFakeMemberRepo()
	history := newFakeHistoryRepo()
	svc := NewMemberService(members, history, nil)

	member := members.add("vera", 1006)
	// Победа на 10, поражение на 4 и обмен без очков (победа при разнице 238+).
	for _, entry := range []models.RankingHistory{
		{MemberID: member.ID, Ranking: 1010, PreviousRanking: 1000, Change: 10, Reason: models.RankingReasonGameResult},
		{MemberID: member.ID, Ranking: 1006, PreviousRanking: 1010, Change: -4, Reason: models.RankingReasonGameResult},
		{MemberID: member.ID, Ranking: 1006, PreviousRanking: 1006, Change: 0, Reason: models.RankingReasonGameResult},
	} {
		e := entry
		if err := history.Create(ctx, nil, &e); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	stats, err := svc.RankingStats(ctx, member.ID)
	if err != nil {
		t.Fatalf("RankingStats: %v", err)
	}

	// Запись без изменения рейтинга не считается ни победой, ни поражением.
	if stats.Wins != 1 || stats.Losses != 1 {
		t.Errorf("wins/losses = %d/%d, want 1/1", stats.Wins, stats.Losses)
	}
	if stats.TotalGames != 2 {
		t.Errorf("total games = %d, want 2", stats.TotalGames)
	}
	if stats.WinRate != 50 {
		t.Errorf("win rate = %v, want 50", stats.WinRate)
	}
	if stats.TotalPointsGained != 10 || stats.TotalPointsLost != 4 {
		t.Errorf("points gained/lost = %d/%d, want 10/4", stats.TotalPointsGained, stats.TotalPointsLost)
	}
	if stats.BiggestWin != 10 || stats.BiggestLoss != 4 {
		t.Errorf("biggest win/loss = %d/%d, want 10/4", stats.BiggestWin, stats.BiggestLoss)
	}
	if stats.HighestRanking != 1010 || stats.LowestRanking != 1006 {
		t.Errorf("highest/lowest = %d/%d, want 1010/1006", stats.HighestRanking, stats.LowestRanking)
	}
	if stats.CurrentRanking != 1006 {
		t.Errorf("current ranking = %d, want 1006", stats.CurrentRanking)
	}
}

func TestRankingStats_UnknownMember(t *testing.T) {
	svc := NewMemberService(newFakeMemberRepo(), newFakeHistoryRepo(), nil)
	if _, err := svc.RankingStats(context.Background(), 404); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("err = %v, want ErrMemberNotFound", err)
	}
}
