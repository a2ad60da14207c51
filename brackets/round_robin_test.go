package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/ligapro/liga-backend/models"
)

func generateRoundRobin(t *testing.T, n, legs int) []*models.Game {
	t.Helper()
	rankings := make([]int, n)
	for i := range rankings {
		rankings[i] = 1000
	}
	games, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: &models.Tournament{ID: 3, EliminationType: models.EliminationRoundRobin, Rounds: legs},
		Members:    testMembers(rankings...),
	})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	return games
}

func TestRoundRobinMatchCount(t *testing.T) {
	for _, tc := range []struct{ n, legs int }{
		{4, 1}, {6, 1}, {8, 1}, {4, 2}, {6, 2},
	} {
		t.Run(fmt.Sprintf("n=%d legs=%d", tc.n, tc.legs), func(t *testing.T) {
			games := generateRoundRobin(t, tc.n, tc.legs)
			want := tc.legs * (tc.n - 1) * tc.n / 2
			if len(games) != want {
				t.Fatalf("got %d games, want %d", len(games), want)
			}
		})
	}
}

func TestRoundRobinNoRepeatWithinRound(t *testing.T) {
	games := generateRoundRobin(t, 6, 1)

	byRound := make(map[int][]*models.Game)
	for _, g := range games {
		if g.Round == nil {
			t.Fatal("ungrouped round robin game without round number")
		}
		byRound[*g.Round] = append(byRound[*g.Round], g)
	}
	if len(byRound) != 5 {
		t.Fatalf("got %d rounds, want 5", len(byRound))
	}

	for round, roundGames := range byRound {
		seen := make(map[int]bool)
		for _, g := range roundGames {
			for _, id := range []int{*g.Member1ID, *g.Member2ID} {
				if seen[id] {
					t.Fatalf("member %d plays twice in round %d", id, round)
				}
				seen[id] = true
			}
		}
	}
}

func TestRoundRobinOddMemberCount(t *testing.T) {
	// 5 участников: bye-слот добавляется, его матчи пропускаются.
	games := generateRoundRobin(t, 5, 1)
	if len(games) != 10 {
		t.Fatalf("got %d games, want 10", len(games))
	}
	for _, g := range games {
		if !g.HasBothMembers() {
			t.Fatal("round robin game with an empty slot")
		}
		if g.Status != models.GameStatusPending {
			t.Fatalf("game status %s, want pending", g.Status)
		}
	}
}

func TestRoundRobinSecondLegSwapsSlots(t *testing.T) {
	games := generateRoundRobin(t, 4, 2)

	type pairing struct{ m1, m2 int }
	legs := map[int]map[pairing]bool{1: {}, 2: {}}
	for _, g := range games {
		if g.Pairing == nil || g.Pairing.Type != models.PairingLeg || g.Pairing.Leg == nil {
			t.Fatal("double round robin game without leg descriptor")
		}
		legs[*g.Pairing.Leg][pairing{*g.Member1ID, *g.Member2ID}] = true
	}
	if len(legs[1]) != 6 || len(legs[2]) != 6 {
		t.Fatalf("got %d/%d games per leg, want 6/6", len(legs[1]), len(legs[2]))
	}
	for p := range legs[1] {
		if !legs[2][pairing{p.m2, p.m1}] {
			t.Fatalf("leg 2 is missing the reversed pairing of %v", p)
		}
	}
}
