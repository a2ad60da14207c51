package brackets

import (
	"context"
	"errors"
	"math"

	"github.com/ligapro/liga-backend/models"
)

type DirectEliminationGenerator struct{}

func NewDirectEliminationGenerator() BracketGenerator {
	return &DirectEliminationGenerator{}
}

func (g *DirectEliminationGenerator) GetName() string {
	return "DirectElimination"
}

// GenerateBracket builds a single-elimination bracket. The seeded list is
// padded with byes up to the next power of two; consecutive entries form the
// first-round pairs. A pair with one real member becomes a bye game in
// waiting_for_winner (it is never played), a pair of two byes produces no
// game at all. Later rounds are empty placeholders awaiting winners.
func (g *DirectEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Game, error) {
	members := params.Members
	tournamentID := params.Tournament.ID
	n := len(members)

	if n < 2 {
		return nil, errors.New("not enough members to generate a direct elimination bracket (minimum 2)")
	}

	totalRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(totalRounds)

	slots := make([]*models.Member, bracketSize)
	copy(slots, members)

	games := make([]*models.Game, 0, bracketSize-1)

	// Round 1: пары соседних посеянных участников.
	round := 1
	slotIndex := 0
	for i := 0; i < bracketSize; i += 2 {
		m1, m2 := slots[i], slots[i+1]
		if m1 == nil && m2 == nil {
			continue
		}

		status := models.GameStatusWaitingForWinner
		if m1 != nil && m2 != nil {
			status = models.GameStatusPending
		}
		r := round
		game := &models.Game{
			TournamentID: tournamentID,
			Round:        &r,
			Status:       status,
			SlotIndex:    slotIndex,
		}
		if m1 != nil {
			id := m1.ID
			game.Member1ID = &id
		}
		if m2 != nil {
			id := m2.ID
			game.Member2ID = &id
		}
		games = append(games, game)
		slotIndex++
	}

	// Последующие раунды: пустые заготовки, число матчей делится пополам
	// вплоть до финала.
	gamesInRound := bracketSize / 4
	round = 2
	for gamesInRound >= 1 {
		for i := 0; i < gamesInRound; i++ {
			r := round
			games = append(games, &models.Game{
				TournamentID: tournamentID,
				Round:        &r,
				Status:       models.GameStatusWaitingForWinner,
				SlotIndex:    i,
			})
		}
		gamesInRound /= 2
		round++
	}

	return games, nil
}
