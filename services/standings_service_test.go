package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
)

func TestGetFinalStandings(t *testing.T) {
	ctx := context.Background()

	t.Run("full round robin with ranking exchange", func(t *testing.T) {
		env := newTestEnv(t)
		standingsSvc := NewStandingsService(env.tournaments, env.games, env.history, nil)
		tournament := env.tournaments.add(models.Tournament{
			Name:            "Liga",
			EliminationType: models.EliminationRoundRobin,
			SeedingType:     models.SeedingSequential,
			Rounds:          1,
			AffectsRanking:  true,
		})
		players := env.addPlayers(t, tournament.ID, 3)
		if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{}); err != nil {
			t.Fatalf("GenerateBracket: %v", err)
		}

		games := env.listGames(t, tournament.ID, repositories.GameListFilter{})
		if len(games) != 3 {
			t.Fatalf("games = %d, want 3", len(games))
		}

		// До завершения всех игр таблицы нет.
		if _, err := standingsSvc.GetFinalStandings(ctx, tournament.ID); !errors.Is(err, ErrTournamentNotFinished) {
			t.Fatalf("unfinished tournament: err = %v, want ErrTournamentNotFinished", err)
		}

		// Игрок 1 выигрывает обе игры, игроки 2 и 3 играют вничью.
		for _, game := range games {
			m1, m2 := *game.Member1ID, *game.Member2ID
			var score1, score2 int
			switch {
			case m1 == players[0].ID:
				score1, score2 = 11, 5
			case m2 == players[0].ID:
				score1, score2 = 5, 11
			default:
				score1, score2 = 10, 10
			}
			if _, err := env.results.RecordResult(ctx, game.ID, score1, score2); err != nil {
				t.Fatalf("record game %d: %v", game.ID, err)
			}
		}

		standings, err := standingsSvc.GetFinalStandings(ctx, tournament.ID)
		if err != nil {
			t.Fatalf("GetFinalStandings: %v", err)
		}
		if len(standings) != 3 {
			t.Fatalf("standings rows = %d, want 3", len(standings))
		}

		first := standings[0]
		if first.MemberID != players[0].ID || first.Points != 6 || first.Wins != 2 {
			t.Errorf("first place: %+v, want member %d with 6 points and 2 wins", first, players[0].ID)
		}
		for _, st := range standings[1:] {
			if st.Points != 1 || st.Draws != 1 || st.Losses != 1 {
				t.Errorf("row %+v: want 1 point, 1 draw, 1 loss", st)
			}
		}

		// Оба матча победителя влияли на рейтинг: суммарное изменение
		// положительное и согласовано с историей.
		if first.RankingChange == nil || *first.RankingChange <= 0 {
			t.Errorf("winner ranking change = %v, want positive", first.RankingChange)
		}
		if first.InitialRanking != 1000 {
			t.Errorf("winner initial ranking = %d, want 1000", first.InitialRanking)
		}
		if first.FinalRanking != first.InitialRanking+*first.RankingChange {
			t.Errorf("final ranking %d != initial %d + change %d", first.FinalRanking, first.InitialRanking, *first.RankingChange)
		}
	})

	t.Run("draw participants have no ranking history", func(t *testing.T) {
		// Ничья не трогает рейтинг: если это единственные игры участника,
		// итоговая таблица отдаёт null вместо изменения.
		env := newTestEnv(t)
		standingsSvc := NewStandingsService(env.tournaments, env.games, env.history, nil)
		tournament := env.tournaments.add(models.Tournament{
			Name:            "Liga",
			EliminationType: models.EliminationRoundRobin,
			SeedingType:     models.SeedingSequential,
			Rounds:          1,
			AffectsRanking:  true,
		})
		players := env.addPlayers(t, tournament.ID, 2)
		if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{}); err != nil {
			t.Fatalf("GenerateBracket: %v", err)
		}
		game := env.listGames(t, tournament.ID, repositories.GameListFilter{})[0]
		if _, err := env.results.RecordResult(ctx, game.ID, 10, 10); err != nil {
			t.Fatalf("record draw: %v", err)
		}

		standings, err := standingsSvc.GetFinalStandings(ctx, tournament.ID)
		if err != nil {
			t.Fatalf("GetFinalStandings: %v", err)
		}
		for _, st := range standings {
			if st.RankingChange != nil {
				t.Errorf("member %d ranking change = %d, want nil", st.MemberID, *st.RankingChange)
			}
			if st.InitialRanking != 1000 || st.FinalRanking != 1000 {
				t.Errorf("member %d initial/final = %d/%d, want current ranking", st.MemberID, st.InitialRanking, st.FinalRanking)
			}
		}
		_ = players
	})

	t.Run("unknown tournament", func(t *testing.T) {
		env := newTestEnv(t)
		standingsSvc := NewStandingsService(env.tournaments, env.games, env.history, nil)
		if _, err := standingsSvc.GetFinalStandings(ctx, 404); !errors.Is(err, ErrTournamentNotFound) {
			t.Errorf("err = %v, want ErrTournamentNotFound", err)
		}
	})

	t.Run("empty bracket is not finished", func(t *testing.T) {
		env := newTestEnv(t)
		standingsSvc := NewStandingsService(env.tournaments, env.games, env.history, nil)
		tournament := env.tournaments.add(models.Tournament{Name: "Empty", EliminationType: models.EliminationDirect})
		if _, err := standingsSvc.GetFinalStandings(ctx, tournament.ID); !errors.Is(err, ErrTournamentNotFinished) {
			t.Errorf("err = %v, want ErrTournamentNotFinished", err)
		}
	})
}
