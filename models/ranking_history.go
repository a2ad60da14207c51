package models

import "time"

// RankingReasonGameResult — единственная причина, создаваемая ядром.
const RankingReasonGameResult = "game_result"

// RankingHistory — неизменяемая запись об изменении рейтинга участника.
type RankingHistory struct {
	ID              int       `json:"id" db:"id"`
	MemberID        int       `json:"member_id" db:"member_id"`
	Ranking         int       `json:"ranking" db:"ranking"`
	PreviousRanking int       `json:"previous_ranking" db:"previous_ranking"`
	Change          int       `json:"change" db:"change"`
	GameID          *int      `json:"game_id,omitempty" db:"game_id"`
	TournamentID    *int      `json:"tournament_id,omitempty" db:"tournament_id"`
	Reason          string    `json:"reason" db:"reason"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// RankingUpdateSide — состояние одного из двух участников обмена очками.
type RankingUpdateSide struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	OldRanking int    `json:"old_ranking"`
	NewRanking int    `json:"new_ranking"`
	Change     int    `json:"change"`
}

// RankingUpdate — сводка обмена очками после результативного матча.
type RankingUpdate struct {
	Winner            RankingUpdateSide `json:"winner"`
	Loser             RankingUpdateSide `json:"loser"`
	RankingDifference int               `json:"ranking_difference"`
	ExpectedResult    bool              `json:"expected_result"`
	ExchangePoints    int               `json:"exchange_points"`
}

// RankingStats — агрегированная статистика рейтинга участника.
type RankingStats struct {
	CurrentRanking       int     `json:"current_ranking"`
	HighestRanking       int     `json:"highest_ranking"`
	LowestRanking        int     `json:"lowest_ranking"`
	TotalGames           int     `json:"total_games"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	WinRate              float64 `json:"win_rate"`
	TotalPointsGained    int     `json:"total_points_gained"`
	TotalPointsLost      int     `json:"total_points_lost"`
	AverageChangePerGame float64 `json:"average_change_per_game"`
	BiggestWin           int     `json:"biggest_win"`
	BiggestLoss          int     `json:"biggest_loss"`
}

// MonthlyRankingPoint — последний рейтинг месяца для графика динамики.
type MonthlyRankingPoint struct {
	Month     string `json:"month"` // YYYY-MM
	Year      int    `json:"year"`
	Ranking   int    `json:"ranking"`
	Date      string `json:"date"`
}
