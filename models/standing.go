package models

// Standing — строка итоговой таблицы турнира.
// Очки: победа 3, ничья 1, поражение 0.
type Standing struct {
	MemberID    int    `json:"member_id"`
	Name        string `json:"name"`
	Ranking     int    `json:"ranking"`
	Points      int    `json:"points"`
	Wins        int    `json:"wins"`
	Draws       int    `json:"draws"`
	Losses      int    `json:"losses"`
	GamesPlayed int    `json:"games_played"`
	Club        *Club  `json:"club,omitempty"`

	// Суммарное изменение рейтинга за турнир: nil, если ни один матч
	// турнира не повлиял на рейтинг участника.
	RankingChange  *int `json:"ranking_change"`
	InitialRanking int  `json:"initial_ranking"`
	FinalRanking   int  `json:"final_ranking"`
}

// GroupStanding — позиция внутри группы для отбора в фазу на вылет.
// Очки групповой фазы: победитель 2, проигравший 1 (ничьих в группах нет).
type GroupStanding struct {
	MemberID int `json:"member_id"`
	Points   int `json:"points"`
	Wins     int `json:"wins"`
}
