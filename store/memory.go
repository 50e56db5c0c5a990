package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"pinquiz/models"
)

// MemoryStore keeps each game as a marshaled JSON snapshot in a
// mutex-guarded map. Serializing on Put and deserializing on Get means
// every read hands back a fresh value, so two clients sharing the
// store can never alias each other's records.
type MemoryStore struct {
	mu    sync.Mutex
	games map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(_ context.Context, pin string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.games[pin]
	if !ok {
		return nil, ErrGameNotFound
	}

	var game models.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", pin, err)
	}
	return &game, nil
}

func (s *MemoryStore) Put(_ context.Context, game *models.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", game.Pin, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.Pin] = data
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, pin)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := make([]*models.Game, 0, len(s.games))
	for pin, data := range s.games {
		var game models.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game %s: %w", pin, err)
		}
		games = append(games, &game)
	}
	return games, nil
}
