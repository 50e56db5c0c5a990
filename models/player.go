package models

import "time"

// Player is keyed in Game.Players by an opaque id generated at join
// time. Answers maps question index to the chosen 1-based option.
// Position stays zero until final scoring assigns ranks.
type Player struct {
	Name      string      `json:"name"`
	Score     int         `json:"score"`
	Connected bool        `json:"connected"`
	JoinedAt  time.Time   `json:"joinedAt"`
	Answers   map[int]int `json:"answers"`
	Position  int         `json:"position,omitempty"`
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Answers = make(map[int]int, len(p.Answers))
	for k, v := range p.Answers {
		clone.Answers[k] = v
	}
	return &clone
}
