package brackets

import (
	"context"
	"testing"

	"github.com/ligapro/liga-backend/models"
)

func generateGroupPlayoff(t *testing.T, n, groups, advancers, legs int) []*models.Game {
	t.Helper()
	rankings := make([]int, n)
	for i := range rankings {
		rankings[i] = 1000
	}
	games, err := NewGroupPlayoffGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: &models.Tournament{
			ID:                 11,
			EliminationType:    models.EliminationGroups,
			ParticipantsNumber: n,
			GroupsNumber:       groups,
			AdvancersPerGroup:  advancers,
			Rounds:             legs,
		},
		Members: testMembers(rankings...),
	})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	return games
}

func gamesOfGroup(games []*models.Game, name string) []*models.Game {
	var out []*models.Game
	for _, g := range games {
		if g.GroupName != nil && *g.GroupName == name {
			out = append(out, g)
		}
	}
	return out
}

func TestGroupPlayoffTwoGroups(t *testing.T) {
	games := generateGroupPlayoff(t, 8, 2, 2, 1)

	// Две группы по 4 — 6 матчей каждая, плюс 2 полуфинала и финал.
	if len(games) != 15 {
		t.Fatalf("got %d games, want 15", len(games))
	}
	for _, name := range []string{"Group A", "Group B"} {
		group := gamesOfGroup(games, name)
		if len(group) != 6 {
			t.Fatalf("%s: got %d games, want 6", name, len(group))
		}
		for _, g := range group {
			if g.Round != nil {
				t.Fatalf("%s game carries a round number", name)
			}
			if g.Status != models.GameStatusPending {
				t.Fatalf("%s game not pending", name)
			}
		}
	}

	semis := gamesOfGroup(games, "Semifinal")
	if len(semis) != 2 {
		t.Fatalf("got %d semifinals, want 2", len(semis))
	}
	for _, g := range semis {
		if g.Status != models.GameStatusWaitingForGroups {
			t.Fatalf("semifinal status %s, want waiting_for_groups", g.Status)
		}
		if g.Member1ID != nil || g.Member2ID != nil {
			t.Fatal("semifinal slots must start empty")
		}
	}

	// Крест: A1-B2 и B1-A2.
	if !semis[0].Pairing.ReferencesGroupPosition(1, 0, 1) || !semis[0].Pairing.ReferencesGroupPosition(2, 1, 2) {
		t.Fatalf("semifinal 0 pairing %+v, want group0 pos1 vs group1 pos2", semis[0].Pairing)
	}
	if !semis[1].Pairing.ReferencesGroupPosition(1, 1, 1) || !semis[1].Pairing.ReferencesGroupPosition(2, 0, 2) {
		t.Fatalf("semifinal 1 pairing %+v, want group1 pos1 vs group0 pos2", semis[1].Pairing)
	}

	finals := gamesOfGroup(games, "Final")
	if len(finals) != 1 {
		t.Fatalf("got %d finals, want 1", len(finals))
	}
	if !finals[0].Pairing.ReferencesGame(1, 1, 0) || !finals[0].Pairing.ReferencesGame(2, 1, 1) {
		t.Fatalf("final pairing %+v, want winners of round-1 games 0 and 1", finals[0].Pairing)
	}
}

func TestGroupPlayoffSerpentineDistribution(t *testing.T) {
	games := generateGroupPlayoff(t, 8, 2, 2, 1)

	inGroup := func(name string) map[int]bool {
		ids := make(map[int]bool)
		for _, g := range gamesOfGroup(games, name) {
			ids[*g.Member1ID] = true
			ids[*g.Member2ID] = true
		}
		return ids
	}

	// Змейка по индексу регистрации: A = {1,4,5,8}, B = {2,3,6,7}.
	groupA := inGroup("Group A")
	for _, id := range []int{1, 4, 5, 8} {
		if !groupA[id] {
			t.Fatalf("member %d not in Group A: %v", id, groupA)
		}
	}
	groupB := inGroup("Group B")
	for _, id := range []int{2, 3, 6, 7} {
		if !groupB[id] {
			t.Fatalf("member %d not in Group B: %v", id, groupB)
		}
	}
}

func TestGroupPlayoffFourGroups(t *testing.T) {
	games := generateGroupPlayoff(t, 16, 4, 2, 1)

	quarters := gamesOfGroup(games, "Quarterfinal")
	if len(quarters) != 4 {
		t.Fatalf("got %d quarterfinals, want 4", len(quarters))
	}
	// game k: группа k%G против (k+G/2)%G, позиция по половине списка.
	if !quarters[0].Pairing.ReferencesGroupPosition(1, 0, 1) || !quarters[0].Pairing.ReferencesGroupPosition(2, 2, 2) {
		t.Fatalf("quarterfinal 0 pairing %+v", quarters[0].Pairing)
	}
	if !quarters[2].Pairing.ReferencesGroupPosition(1, 2, 2) || !quarters[2].Pairing.ReferencesGroupPosition(2, 0, 1) {
		t.Fatalf("quarterfinal 2 pairing %+v", quarters[2].Pairing)
	}

	if n := len(gamesOfGroup(games, "Semifinal")); n != 2 {
		t.Fatalf("got %d semifinals, want 2", n)
	}
	if n := len(gamesOfGroup(games, "Final")); n != 1 {
		t.Fatalf("got %d finals, want 1", n)
	}
}

func TestGroupPlayoffSingleAdvancer(t *testing.T) {
	games := generateGroupPlayoff(t, 8, 2, 1, 1)

	finals := gamesOfGroup(games, "Final")
	if len(finals) != 1 {
		t.Fatalf("got %d finals, want 1", len(finals))
	}
	// Наивное спаривание соседних групп: победитель A против победителя B.
	if !finals[0].Pairing.ReferencesGroupPosition(1, 0, 1) || !finals[0].Pairing.ReferencesGroupPosition(2, 1, 1) {
		t.Fatalf("final pairing %+v, want group0 pos1 vs group1 pos1", finals[0].Pairing)
	}
}

func TestGroupNameRoundTrip(t *testing.T) {
	for i := 0; i < 4; i++ {
		if got := GroupIndex(GroupName(i)); got != i {
			t.Fatalf("GroupIndex(GroupName(%d)) = %d", i, got)
		}
	}
}
