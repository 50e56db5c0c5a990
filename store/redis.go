package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pinquiz/models"

	"github.com/redis/go-redis/v9"
)

const gameKeyPrefix = "game:"

// DefaultGameTTL matches the expiration used for game-state snapshots
// in Redis. A game that outlives it simply disappears from the store,
// which observers report through their missing-game path.
const DefaultGameTTL = 2 * time.Hour

// RedisStore persists each game as a JSON snapshot under "game:<pin>",
// giving multiple processes the same shared-record view the in-memory
// store gives a single process.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultGameTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, pin string) (*models.Game, error) {
	data, err := s.client.Get(ctx, gameKeyPrefix+pin).Result()
	if err == redis.Nil {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read game %s: %w", pin, err)
	}

	var game models.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", pin, err)
	}
	return &game, nil
}

func (s *RedisStore) Put(ctx context.Context, game *models.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", game.Pin, err)
	}

	if err := s.client.Set(ctx, gameKeyPrefix+game.Pin, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store game %s: %w", game.Pin, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, pin string) error {
	if err := s.client.Del(ctx, gameKeyPrefix+pin).Err(); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", pin, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]*models.Game, error) {
	var games []*models.Game

	iter := s.client.Scan(ctx, 0, gameKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			// Expired between SCAN and GET.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", iter.Val(), err)
		}

		var game models.Game
		if err := json.Unmarshal([]byte(data), &game); err != nil {
			log.Printf("Skipping unreadable game record %s: %v", iter.Val(), err)
			continue
		}
		games = append(games, &game)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}
	return games, nil
}
