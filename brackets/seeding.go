package brackets

import (
	"math/rand"
	"sort"

	"github.com/ligapro/liga-backend/models"
)

// SortMembers применяет стратегию рассева к списку участников
// (вход — порядок регистрации) и возвращает новый срез.
// Неизвестная стратегия оставляет порядок без изменений.
func SortMembers(members []*models.Member, seeding models.SeedingType) []*models.Member {
	switch seeding {
	case models.SeedingTraditional:
		return snakeSeeding(members)
	case models.SeedingRandom:
		shuffled := make([]*models.Member, len(members))
		copy(shuffled, members)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled
	default:
		out := make([]*models.Member, len(members))
		copy(out, members)
		return out
	}
}

// snakeSeeding — "культурный" рассев змейкой: участники сортируются по
// рейтингу по убыванию и раскладываются бустрофедоном по max(1, n/4)
// виртуальным группам, после чего группы конкатенируются. Сильнейшие
// оказываются равномерно разведены по сетке.
func snakeSeeding(members []*models.Member) []*models.Member {
	sorted := make([]*models.Member, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ranking > sorted[j].Ranking
	})

	numGroups := len(members) / 4
	if numGroups < 1 {
		numGroups = 1
	}

	groups := make([][]*models.Member, numGroups)
	for index, member := range sorted {
		round := index / numGroups
		groupIndex := index % numGroups
		if round%2 != 0 {
			groupIndex = numGroups - 1 - groupIndex
		}
		groups[groupIndex] = append(groups[groupIndex], member)
	}

	result := make([]*models.Member, 0, len(members))
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
