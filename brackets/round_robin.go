package brackets

import (
	"context"
	"fmt"

	"github.com/ligapro/liga-backend/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates matches for a round-robin tournament. With
// Tournament.Rounds == 2 every pairing is played twice with slots swapped
// on the second leg.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Game, error) {
	if len(params.Members) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: not enough members (found %d, min 2 required)", len(params.Members))
	}

	legs := params.Tournament.Rounds
	if legs != 2 {
		legs = 1
	}

	return generateRoundRobinGames(params.Members, params.Tournament.ID, nil, legs), nil
}

// generateRoundRobinGames — метод круга: первый участник фиксируется,
// остальные вращаются после каждого тура. При нечётном числе участников
// добавляется bye-слот; матчи с ним пропускаются.
//
// Для группы (groupName != nil) round остаётся nil — матч идентифицируется
// ярлыком группы; у двухкругового розыгрыша дескриптор хранит номер круга.
func generateRoundRobinGames(members []*models.Member, tournamentID int, groupName *string, legs int) []*models.Game {
	if len(members) < 2 {
		return nil
	}

	players := make([]*models.Member, len(members))
	copy(players, members)
	if len(players)%2 != 0 {
		players = append(players, nil)
	}

	numPlayers := len(players)
	numRounds := numPlayers - 1

	games := make([]*models.Game, 0, legs*numRounds*numPlayers/2)

	for leg := 1; leg <= legs; leg++ {
		for round := 0; round < numRounds; round++ {
			slotIndex := 0
			for i := 0; i < numPlayers/2; i++ {
				p1 := players[i]
				p2 := players[numPlayers-1-i]
				if p1 == nil || p2 == nil {
					continue
				}
				if leg == 2 {
					p1, p2 = p2, p1
				}

				m1, m2 := p1.ID, p2.ID
				game := &models.Game{
					TournamentID: tournamentID,
					GroupName:    groupName,
					Member1ID:    &m1,
					Member2ID:    &m2,
					Status:       models.GameStatusPending,
					SlotIndex:    slotIndex,
				}
				if groupName == nil {
					r := (leg-1)*numRounds + round + 1
					game.Round = &r
				}
				if legs > 1 {
					game.Pairing = models.NewLegPairing(leg)
				}
				games = append(games, game)
				slotIndex++
			}

			// Вращение: последний участник вставляется сразу после фиксированного.
			last := players[numPlayers-1]
			copy(players[2:], players[1:numPlayers-1])
			players[1] = last
		}
	}

	return games
}
