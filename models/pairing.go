package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// PairingType — вид дескриптора зависимостей матча.
type PairingType string

const (
	// PairingGroupWinners: слоты заполняются финишировавшими в группах.
	PairingGroupWinners PairingType = "group_winners"
	// PairingGameWinners: слоты заполняются победителями матчей предыдущего раунда.
	PairingGameWinners PairingType = "game_winners"
	// PairingLeg помечает матч второго круга двухкругового round robin.
	PairingLeg PairingType = "leg"
)

// PairingSlot описывает источник одного слота матча.
// Для group_winners заполнены Group/Position, для game_winners — PrevRound/Game.
type PairingSlot struct {
	Group     *int `json:"group,omitempty"`
	Position  *int `json:"position,omitempty"`
	PrevRound *int `json:"prev_round,omitempty"`
	Game      *int `json:"game,omitempty"`
}

// PairingInfo — размеченное объединение вместо нетипизированного JSON-блоба:
// декодируется один раз при чтении строки матча.
type PairingInfo struct {
	Type         PairingType  `json:"type"`
	Participant1 *PairingSlot `json:"participant1,omitempty"`
	Participant2 *PairingSlot `json:"participant2,omitempty"`
	Leg          *int         `json:"leg,omitempty"`
}

func NewGroupWinnersPairing(group1, position1, group2, position2 int) *PairingInfo {
	return &PairingInfo{
		Type:         PairingGroupWinners,
		Participant1: &PairingSlot{Group: &group1, Position: &position1},
		Participant2: &PairingSlot{Group: &group2, Position: &position2},
	}
}

func NewGameWinnersPairing(prevRound, game1, game2 int) *PairingInfo {
	r1, r2 := prevRound, prevRound
	return &PairingInfo{
		Type:         PairingGameWinners,
		Participant1: &PairingSlot{PrevRound: &r1, Game: &game1},
		Participant2: &PairingSlot{PrevRound: &r2, Game: &game2},
	}
}

func NewLegPairing(leg int) *PairingInfo {
	return &PairingInfo{Type: PairingLeg, Leg: &leg}
}

// ReferencesGroupPosition reports whether the descriptor's slot (1 or 2)
// awaits the member finishing at position in group groupIndex.
func (p *PairingInfo) ReferencesGroupPosition(slot, groupIndex, position int) bool {
	if p == nil || p.Type != PairingGroupWinners {
		return false
	}
	s := p.slot(slot)
	return s != nil && s.Group != nil && s.Position != nil &&
		*s.Group == groupIndex && *s.Position == position
}

// ReferencesGame reports whether the descriptor's slot (1 or 2) awaits the
// winner of the game at slot index gameIndex of round prevRound.
func (p *PairingInfo) ReferencesGame(slot, prevRound, gameIndex int) bool {
	if p == nil || p.Type != PairingGameWinners {
		return false
	}
	s := p.slot(slot)
	return s != nil && s.PrevRound != nil && s.Game != nil &&
		*s.PrevRound == prevRound && *s.Game == gameIndex
}

func (p *PairingInfo) slot(n int) *PairingSlot {
	if n == 1 {
		return p.Participant1
	}
	return p.Participant2
}

// Value implements driver.Valuer: хранится как JSON-колонка.
func (p *PairingInfo) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pairing info: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner.
func (p *PairingInfo) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("pairing info: unsupported scan source")
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("failed to unmarshal pairing info: %w", err)
	}
	return nil
}
