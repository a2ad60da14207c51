package models

import "time"

// EliminationType определяет формат розыгрыша турнира.
type EliminationType string

const (
	EliminationDirect     EliminationType = "direct"
	EliminationRoundRobin EliminationType = "round_robin"
	EliminationGroups     EliminationType = "groups"
	EliminationMixed      EliminationType = "mixed"
)

func (t EliminationType) Valid() bool {
	switch t {
	case EliminationDirect, EliminationRoundRobin, EliminationGroups, EliminationMixed:
		return true
	}
	return false
}

// HasGroupPhase reports whether the format starts with group round robins
// feeding an elimination phase.
func (t EliminationType) HasGroupPhase() bool {
	return t == EliminationGroups || t == EliminationMixed
}

// SeedingType определяет порядок рассева участников.
type SeedingType string

const (
	SeedingSequential  SeedingType = "sequential"
	SeedingRandom      SeedingType = "random"
	SeedingTraditional SeedingType = "traditional"
)

func (t SeedingType) Valid() bool {
	switch t {
	case SeedingSequential, SeedingRandom, SeedingTraditional:
		return true
	}
	return false
}

type TournamentStatus string

const (
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusActive       TournamentStatus = "active"
	TournamentStatusCompleted    TournamentStatus = "completed"
)

// Tournament — конфигурация турнира. Ядро генерации/продвижения читает её,
// но никогда не изменяет.
type Tournament struct {
	ID                 int              `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	ClubID             *int             `json:"club_id,omitempty" db:"club_id"`
	EliminationType    EliminationType  `json:"elimination_type" db:"elimination_type"`
	SeedingType        SeedingType      `json:"seeding_type" db:"seeding_type"`
	ParticipantsNumber int              `json:"participants_number" db:"participants_number"`
	GroupsNumber       int              `json:"groups_number" db:"groups_number"`
	AdvancersPerGroup  int              `json:"advancers_per_group" db:"advancers_per_group"`
	Rounds             int              `json:"rounds" db:"rounds"` // число кругов (1 — ida, 2 — ida y vuelta)
	AffectsRanking     bool             `json:"affects_ranking" db:"affects_ranking"`
	Status             TournamentStatus `json:"status" db:"status"`
	Date               time.Time        `json:"date" db:"date"`
	MainImageKey       *string          `json:"-" db:"main_image_key"`
	MainImageURL       *string          `json:"main_image_url,omitempty" db:"-"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`

	// Счётчики для списков (заполняются репозиторием при выборке)
	GamesCount   *int `json:"games_count,omitempty" db:"-"`
	MembersCount *int `json:"members_count,omitempty" db:"-"`
}
