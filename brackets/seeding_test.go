package brackets

import (
	"testing"

	"github.com/ligapro/liga-backend/models"
)

func testMembers(rankings ...int) []*models.Member {
	members := make([]*models.Member, len(rankings))
	for i, r := range rankings {
		members[i] = &models.Member{ID: i + 1, Ranking: r}
	}
	return members
}

func memberIDs(members []*models.Member) []int {
	ids := make([]int, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func TestSortMembersSequentialKeepsOrder(t *testing.T) {
	members := testMembers(1000, 1200, 900)
	sorted := SortMembers(members, models.SeedingSequential)

	for i := range members {
		if sorted[i].ID != members[i].ID {
			t.Fatalf("sequential seeding changed order at %d: got id %d, want %d", i, sorted[i].ID, members[i].ID)
		}
	}
}

func TestSortMembersUnknownTypeKeepsOrder(t *testing.T) {
	members := testMembers(1000, 1200, 900)
	sorted := SortMembers(members, models.SeedingType("whatever"))

	for i := range members {
		if sorted[i].ID != members[i].ID {
			t.Fatalf("unknown seeding changed order at %d", i)
		}
	}
}

func TestSortMembersRandomIsPermutation(t *testing.T) {
	members := testMembers(1000, 1100, 1200, 1300, 1400, 1500)
	sorted := SortMembers(members, models.SeedingRandom)

	if len(sorted) != len(members) {
		t.Fatalf("got %d members, want %d", len(sorted), len(members))
	}
	seen := make(map[int]bool)
	for _, m := range sorted {
		if seen[m.ID] {
			t.Fatalf("member %d appears twice after shuffle", m.ID)
		}
		seen[m.ID] = true
	}
	for _, m := range members {
		if !seen[m.ID] {
			t.Fatalf("member %d lost during shuffle", m.ID)
		}
	}
}

func TestSortMembersTraditionalSerpentine(t *testing.T) {
	// IDs 1..8 carry ratings 800..1500; two virtual groups of four.
	members := testMembers(800, 900, 1000, 1100, 1200, 1300, 1400, 1500)
	sorted := SortMembers(members, models.SeedingTraditional)

	want := []int{8, 5, 4, 1, 7, 6, 3, 2}
	got := memberIDs(sorted)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("serpentine order mismatch: got %v, want %v", got, want)
		}
	}

	// Deterministic: a second pass must reproduce the same order.
	again := memberIDs(SortMembers(members, models.SeedingTraditional))
	for i := range want {
		if again[i] != want[i] {
			t.Fatalf("traditional seeding is not deterministic: got %v then %v", got, again)
		}
	}
}

func TestSortMembersDegenerateInputs(t *testing.T) {
	if got := SortMembers(nil, models.SeedingTraditional); len(got) != 0 {
		t.Fatalf("empty input: got %d members", len(got))
	}

	single := testMembers(1000)
	got := SortMembers(single, models.SeedingTraditional)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("singleton input changed: %v", memberIDs(got))
	}
}
