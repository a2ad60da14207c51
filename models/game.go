package models

import (
	"strings"
	"time"
)

// GameStatus — машина состояний матча.
//
// waiting_for_groups -> waiting_for_winner -> pending -> completed
//
// Матч с bye создаётся сразу в waiting_for_winner и никогда не играется:
// его единственный участник продвигается дальше без счёта.
type GameStatus string

const (
	GameStatusWaitingForGroups GameStatus = "waiting_for_groups"
	GameStatusWaitingForWinner GameStatus = "waiting_for_winner"
	GameStatusPending          GameStatus = "pending"
	GameStatusCompleted        GameStatus = "completed"
)

// GroupLabelPrefix помечает матчи групповой фазы в group_name.
const GroupLabelPrefix = "Group"

type Game struct {
	ID           int  `json:"id" db:"id"`
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	Round        *int `json:"round,omitempty" db:"round"`
	// GroupName: "Group A"… для групповой фазы, имя раунда ("Semifinal"…)
	// для фазы на вылет, nil для чистого round robin.
	GroupName *string      `json:"group_name,omitempty" db:"group_name"`
	Member1ID *int         `json:"member1_id,omitempty" db:"member1_id"`
	Member2ID *int         `json:"member2_id,omitempty" db:"member2_id"`
	Score1    *int         `json:"score1,omitempty" db:"score1"`
	Score2    *int         `json:"score2,omitempty" db:"score2"`
	WinnerID  *int         `json:"winner_id,omitempty" db:"winner_id"`
	Status    GameStatus   `json:"status" db:"status"`
	Pairing   *PairingInfo `json:"pairing_info,omitempty" db:"pairing_info"`
	// SlotIndex — явный порядковый номер матча внутри раунда/группы,
	// назначается при генерации. Продвижение опирается на него, а не на
	// порядок вставки строк.
	EliminationGameID *int      `json:"elimination_game_id,omitempty" db:"elimination_game_id"`
	SlotIndex         int       `json:"slot_index" db:"slot_index"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	// Опциональные связанные сущности
	Member1 *Member `json:"member1,omitempty" db:"-"`
	Member2 *Member `json:"member2,omitempty" db:"-"`

	// Итог обмена рейтинговыми очками, если был (не хранится в БД)
	RankingUpdate *RankingUpdate `json:"ranking_update,omitempty" db:"-"`
}

// IsGroupStage reports whether the game belongs to the group phase
// (as opposed to an elimination round whose label is a round name).
func (g *Game) IsGroupStage() bool {
	return g.GroupName != nil && strings.Contains(*g.GroupName, GroupLabelPrefix)
}

// HasBothMembers reports whether both slots are filled.
func (g *Game) HasBothMembers() bool {
	return g.Member1ID != nil && g.Member2ID != nil
}

// SoleMember returns the single filled slot of a bye game, or nil when the
// game has zero or two participants.
func (g *Game) SoleMember() *int {
	if g.Member1ID != nil && g.Member2ID == nil {
		return g.Member1ID
	}
	if g.Member2ID != nil && g.Member1ID == nil {
		return g.Member2ID
	}
	return nil
}

// EffectiveWinner — победитель для целей продвижения: у завершённого матча
// это WinnerID, у bye-матча — его единственный участник.
func (g *Game) EffectiveWinner() *int {
	if g.Status == GameStatusCompleted {
		return g.WinnerID
	}
	if g.Status == GameStatusWaitingForWinner {
		return g.SoleMember()
	}
	return nil
}
