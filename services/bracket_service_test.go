package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
)

func TestGenerateBracket_Validation(t *testing.T) {
	ctx := context.Background()

	newTournament := func(env *testEnv, cfg models.Tournament, playerCount int) *models.Tournament {
		tournament := env.tournaments.add(cfg)
		for i := 0; i < playerCount; i++ {
			m := env.members.add("player", 1000)
			_ = env.members.Register(ctx, tournament.ID, m.ID)
		}
		return tournament
	}

	t.Run("unknown tournament", func(t *testing.T) {
		env := newTestEnv(t)
		if _, err := env.brackets.GenerateBracket(ctx, 404, GenerateBracketInput{}); !errors.Is(err, ErrTournamentNotFound) {
			t.Errorf("err = %v, want ErrTournamentNotFound", err)
		}
	})

	t.Run("single participant", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := newTournament(env, models.Tournament{
			Name:            "Solo",
			EliminationType: models.EliminationDirect,
			SeedingType:     models.SeedingSequential,
			Rounds:          1,
		}, 1)
		if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{}); !errors.Is(err, ErrNotEnoughParticipants) {
			t.Errorf("err = %v, want ErrNotEnoughParticipants", err)
		}
	})

	t.Run("too few participants for the groups", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := newTournament(env, models.Tournament{
			Name:              "Grupos",
			EliminationType:   models.EliminationGroups,
			SeedingType:       models.SeedingSequential,
			GroupsNumber:      4,
			AdvancersPerGroup: 1,
			Rounds:            1,
		}, 6)
		if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{}); !errors.Is(err, ErrBracketConfigInvalid) {
			t.Errorf("err = %v, want ErrBracketConfigInvalid", err)
		}
	})

	t.Run("advancers not below group size", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := newTournament(env, models.Tournament{
			Name:              "Grupos",
			EliminationType:   models.EliminationGroups,
			SeedingType:       models.SeedingSequential,
			GroupsNumber:      2,
			AdvancersPerGroup: 4,
			Rounds:            1,
		}, 8)
		if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{}); !errors.Is(err, ErrBracketConfigInvalid) {
			t.Errorf("err = %v, want ErrBracketConfigInvalid", err)
		}
	})

	t.Run("invalid rounds", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := newTournament(env, models.Tournament{
			Name:            "Liga",
			EliminationType: models.EliminationRoundRobin,
			SeedingType:     models.SeedingSequential,
			Rounds:          3,
		}, 4)
		if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{}); !errors.Is(err, ErrBracketConfigInvalid) {
			t.Errorf("err = %v, want ErrBracketConfigInvalid", err)
		}
	})

	t.Run("invalid seeding override", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := newTournament(env, models.Tournament{
			Name:            "Copa",
			EliminationType: models.EliminationDirect,
			SeedingType:     models.SeedingSequential,
			Rounds:          1,
		}, 4)
		bad := models.SeedingType("zigzag")
		if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{SeedingType: &bad}); !errors.Is(err, ErrUnknownSeedingType) {
			t.Errorf("err = %v, want ErrUnknownSeedingType", err)
		}
	})
}

func TestGenerateBracket_ReplacesExistingGames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tournament := env.tournaments.add(models.Tournament{
		Name:            "Copa",
		EliminationType: models.EliminationDirect,
		SeedingType:     models.SeedingSequential,
		Rounds:          1,
	})
	env.addPlayers(t, tournament.ID, 4)

	first, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	firstIDs := make(map[int]bool, len(first))
	for _, g := range first {
		firstIDs[g.ID] = true
	}

	second, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{})
	if err != nil {
		t.Fatalf("GenerateBracket (second): %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("regenerated games = %d, want %d", len(second), len(first))
	}

	stored := env.listGames(t, tournament.ID, repositories.GameListFilter{})
	if len(stored) != len(second) {
		t.Errorf("stored games = %d, want %d (old bracket must be gone)", len(stored), len(second))
	}
	for _, g := range stored {
		if firstIDs[g.ID] {
			t.Errorf("game %d from the old bracket survived regeneration", g.ID)
		}
	}

	updated, _ := env.tournaments.GetByID(ctx, tournament.ID)
	if updated.Status != models.TournamentStatusActive {
		t.Errorf("tournament status = %q, want active after generation", updated.Status)
	}
}

func TestGetBracket(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tournament := env.tournaments.add(models.Tournament{
		Name:            "Copa",
		EliminationType: models.EliminationDirect,
		SeedingType:     models.SeedingSequential,
		Rounds:          1,
	})
	env.addPlayers(t, tournament.ID, 4)
	if _, err := env.brackets.GenerateBracket(ctx, tournament.ID, GenerateBracketInput{}); err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}

	games, err := env.brackets.GetBracket(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("GetBracket: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("games = %d, want 3", len(games))
	}
	for _, g := range games[:2] {
		if g.Member1 == nil || g.Member2 == nil {
			t.Errorf("round 1 game %d is missing loaded members", g.ID)
		}
	}

	if _, err := env.brackets.GetBracket(ctx, 404); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("err = %v, want ErrTournamentNotFound", err)
	}
}
