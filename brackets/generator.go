package brackets

import (
	"context"
	"fmt"

	"github.com/ligapro/liga-backend/models"
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	// Members уже отсортированы стратегией рассева (SortMembers).
	Members []*models.Member
}

// BracketGenerator builds the full set of games for one elimination format.
// Games are returned without IDs; persistence is the caller's concern.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Game, error)

	GetName() string
}

// ForEliminationType returns the generator for the tournament's format.
func ForEliminationType(t models.EliminationType) (BracketGenerator, error) {
	switch t {
	case models.EliminationDirect:
		return NewDirectEliminationGenerator(), nil
	case models.EliminationRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.EliminationGroups, models.EliminationMixed:
		return NewGroupPlayoffGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported elimination type %q", t)
	}
}
