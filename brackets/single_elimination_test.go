package brackets

import (
	"context"
	"testing"

	"github.com/ligapro/liga-backend/models"
)

func directTournament() *models.Tournament {
	return &models.Tournament{ID: 7, EliminationType: models.EliminationDirect}
}

func generateDirect(t *testing.T, n int) []*models.Game {
	t.Helper()
	rankings := make([]int, n)
	for i := range rankings {
		rankings[i] = 1000
	}
	games, err := NewDirectEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: directTournament(),
		Members:    testMembers(rankings...),
	})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	return games
}

func gamesOfRound(games []*models.Game, round int) []*models.Game {
	var out []*models.Game
	for _, g := range games {
		if g.Round != nil && *g.Round == round {
			out = append(out, g)
		}
	}
	return out
}

func TestDirectEliminationPowerOfTwo(t *testing.T) {
	games := generateDirect(t, 8)

	// 8 участников — ровно n-1 матчей.
	if len(games) != 7 {
		t.Fatalf("got %d games, want 7", len(games))
	}

	for _, g := range gamesOfRound(games, 1) {
		if g.Status != models.GameStatusPending {
			t.Fatalf("round 1 game has status %s, want pending", g.Status)
		}
		if !g.HasBothMembers() {
			t.Fatalf("round 1 game missing a member")
		}
	}
	for round, want := range map[int]int{1: 4, 2: 2, 3: 1} {
		if got := len(gamesOfRound(games, round)); got != want {
			t.Fatalf("round %d: got %d games, want %d", round, got, want)
		}
	}
	for _, g := range gamesOfRound(games, 2) {
		if g.Status != models.GameStatusWaitingForWinner {
			t.Fatalf("placeholder game has status %s", g.Status)
		}
		if g.Member1ID != nil || g.Member2ID != nil {
			t.Fatalf("placeholder game has members assigned")
		}
	}
}

func TestDirectEliminationWithByes(t *testing.T) {
	// 5 участников — сетка на 8 слотов, 3 bye.
	games := generateDirect(t, 5)

	round1 := gamesOfRound(games, 1)
	if len(round1) != 3 {
		t.Fatalf("round 1: got %d games, want 3 (the all-bye pair is dropped)", len(round1))
	}

	var byeGames, pendingGames int
	for _, g := range round1 {
		switch {
		case g.SoleMember() != nil:
			if g.Status != models.GameStatusWaitingForWinner {
				t.Fatalf("bye game has status %s, want waiting_for_winner", g.Status)
			}
			byeGames++
		case g.HasBothMembers():
			if g.Status != models.GameStatusPending {
				t.Fatalf("full game has status %s, want pending", g.Status)
			}
			pendingGames++
		default:
			t.Fatalf("round 1 game with no members")
		}
	}
	if byeGames != 1 || pendingGames != 2 {
		t.Fatalf("got %d bye and %d pending games, want 1 and 2", byeGames, pendingGames)
	}

	// 3 + 2 + 1 placeholders down to the final.
	if len(games) != 6 {
		t.Fatalf("got %d total games, want 6", len(games))
	}
}

func TestDirectEliminationSlotIndexes(t *testing.T) {
	games := generateDirect(t, 8)
	for round, count := range map[int]int{1: 4, 2: 2, 3: 1} {
		for i, g := range gamesOfRound(games, round) {
			if g.SlotIndex != i {
				t.Fatalf("round %d game %d has slot index %d", round, i, g.SlotIndex)
			}
		}
		_ = count
	}
}

func TestDirectEliminationTooFewMembers(t *testing.T) {
	_, err := NewDirectEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: directTournament(),
		Members:    testMembers(1000),
	})
	if err == nil {
		t.Fatal("expected error for a single member")
	}
}
