package models

import "time"

// DefaultRanking — стартовый рейтинг нового участника.
const DefaultRanking = 1000

type Member struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Ranking   int       `json:"ranking" db:"ranking"`
	Age       *int      `json:"age,omitempty" db:"age"`
	ClubID    *int      `json:"club_id,omitempty" db:"club_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Опциональная связанная сущность (не мапится напрямую)
	Club *Club `json:"club,omitempty" db:"-"`
}
