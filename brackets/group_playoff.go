package brackets

import (
	"context"
	"fmt"
	"math"

	"github.com/ligapro/liga-backend/models"
)

// GroupPlayoffGenerator covers the "groups" and "mixed" formats: a round
// robin inside every group followed by an elimination phase whose games are
// linked to group finishers and prior games through pairing descriptors.
type GroupPlayoffGenerator struct{}

func NewGroupPlayoffGenerator() BracketGenerator {
	return &GroupPlayoffGenerator{}
}

func (g *GroupPlayoffGenerator) GetName() string {
	return "GroupPlayoff"
}

func (g *GroupPlayoffGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Game, error) {
	t := params.Tournament
	members := params.Members

	if len(members) < 2 {
		return nil, fmt.Errorf("GroupPlayoffGenerator: not enough members (found %d, min 2 required)", len(members))
	}
	if t.GroupsNumber < 2 {
		return nil, fmt.Errorf("GroupPlayoffGenerator: at least 2 groups required, got %d", t.GroupsNumber)
	}

	legs := t.Rounds
	if legs != 2 {
		legs = 1
	}

	toDistribute := len(members)
	if t.ParticipantsNumber > 0 && t.ParticipantsNumber < toDistribute {
		toDistribute = t.ParticipantsNumber
	}

	// Раскладка по группам змейкой, независимо от уже применённого рассева.
	groups := make([][]*models.Member, t.GroupsNumber)
	for i := 0; i < toDistribute; i++ {
		groupIndex := i % t.GroupsNumber
		round := i / t.GroupsNumber
		if round%2 != 0 {
			groupIndex = t.GroupsNumber - 1 - groupIndex
		}
		groups[groupIndex] = append(groups[groupIndex], members[i])
	}

	games := make([]*models.Game, 0)
	for index, groupMembers := range groups {
		if len(groupMembers) < 2 {
			continue
		}
		groupName := GroupName(index)
		games = append(games, generateRoundRobinGames(groupMembers, t.ID, &groupName, legs)...)
	}

	games = append(games, eliminationPhaseGames(t.ID, t.GroupsNumber, t.AdvancersPerGroup)...)

	return games, nil
}

// GroupName возвращает ярлык группы по индексу: "Group A", "Group B"…
func GroupName(index int) string {
	return fmt.Sprintf("%s %c", models.GroupLabelPrefix, rune('A'+index))
}

// GroupIndex — обратное к GroupName преобразование.
func GroupIndex(groupName string) int {
	if groupName == "" {
		return -1
	}
	return int(groupName[len(groupName)-1] - 'A')
}

// eliminationPhaseGames synthesizes the knockout skeleton: every game starts
// in waiting_for_groups with empty slots and a pairing descriptor saying what
// feeds it.
func eliminationPhaseGames(tournamentID, numGroups, advancersPerGroup int) []*models.Game {
	totalAdvancers := numGroups * advancersPerGroup
	if totalAdvancers < 2 {
		return nil
	}
	eliminationRounds := int(math.Ceil(math.Log2(float64(totalAdvancers))))

	games := make([]*models.Game, 0, totalAdvancers-1)
	playersInRound := totalAdvancers
	currentRound := 1

	for playersInRound > 1 && currentRound <= eliminationRounds {
		gamesInRound := playersInRound / 2
		roundName := EliminationRoundName(currentRound, eliminationRounds)

		for gameNum := 0; gameNum < gamesInRound; gameNum++ {
			r := currentRound
			name := roundName
			games = append(games, &models.Game{
				TournamentID: tournamentID,
				Round:        &r,
				GroupName:    &name,
				Status:       models.GameStatusWaitingForGroups,
				Pairing:      eliminationPairing(gameNum, currentRound, numGroups, advancersPerGroup),
				SlotIndex:    gameNum,
			})
		}

		playersInRound = gamesInRound
		currentRound++
	}

	return games
}

// eliminationPairing — детерминированное правило кросс-группового посева
// первого раунда; дальше — победители пар предыдущего раунда.
func eliminationPairing(gameNum, round, numGroups, advancersPerGroup int) *models.PairingInfo {
	if round > 1 {
		prev := gameNum * 2
		return models.NewGameWinnersPairing(round-1, prev, prev+1)
	}

	if advancersPerGroup == 2 && numGroups >= 2 {
		if numGroups == 2 {
			// Крест: 1-е место группы A против 2-го группы B и наоборот,
			// чтобы лидеры групп не встретились раньше финала.
			if gameNum == 0 {
				return models.NewGroupWinnersPairing(0, 1, 1, 2)
			}
			return models.NewGroupWinnersPairing(1, 1, 0, 2)
		}

		group1 := gameNum % numGroups
		group2 := (gameNum + numGroups/2) % numGroups
		position1 := 2
		if gameNum < numGroups/2 {
			position1 = 1
		}
		return models.NewGroupWinnersPairing(group1, position1, group2, 3-position1)
	}

	// Для advancersPerGroup != 2 — простое спаривание соседних групп.
	group1 := gameNum * 2
	return models.NewGroupWinnersPairing(group1, 1, group1+1, 1)
}

// EliminationRoundName labels a knockout round by its distance to the final.
func EliminationRoundName(round, totalRounds int) string {
	switch totalRounds - round + 1 {
	case 1:
		return "Final"
	case 2:
		return "Semifinal"
	case 3:
		return "Quarterfinal"
	case 4:
		return "Round of 16"
	default:
		return fmt.Sprintf("Elimination Round %d", round)
	}
}
