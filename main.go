package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"pinquiz/config"
	"pinquiz/models"
	"pinquiz/services"
	"pinquiz/session"
	"pinquiz/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	cfg := config.Load()
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PINQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "pinquiz",
		Short:         "A pin-based quiz game coordinated through a shared snapshot store.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "game store backend (memory or redis)")
	flags.StringVar(&cfg.RedisHost, "redis-host", cfg.RedisHost, "redis host")
	flags.StringVar(&cfg.RedisPort, "redis-port", cfg.RedisPort, "redis port")
	flags.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "redis password")
	flags.DurationVar(&cfg.GameTTL, "game-ttl", cfg.GameTTL, "how long game records live in redis")
	flags.DurationVar(&cfg.AdminPollInterval, "admin-poll", cfg.AdminPollInterval, "admin view poll interval")
	flags.DurationVar(&cfg.PlayerPollInterval, "player-poll", cfg.PlayerPollInterval, "player view poll interval")
	flags.IntVar(&cfg.PinAttempts, "pin-attempts", cfg.PinAttempts, "bounded attempts when drawing a free pin")
	flags.StringVar(&cfg.AnswerPolicy, "answer-policy", cfg.AnswerPolicy, "duplicate answer handling (overwrite or reject)")

	// PINQUIZ_* environment variables stand in for flags the user did
	// not pass explicitly.
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = flags.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.SilenceUsage = true

	return cmd
}

func newStore(cfg *config.Config) (store.GameStore, error) {
	if cfg.StoreBackend == "redis" {
		client := config.InitRedis(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store.NewRedisStore(client, cfg.GameTTL), nil
	}
	return store.NewMemoryStore(), nil
}

// run plays a full game between an admin session and two player
// sessions that coordinate only through the shared store.
func run(cfg *config.Config) error {
	ctx := context.Background()

	st, err := newStore(cfg)
	if err != nil {
		return err
	}

	opts := []services.Option{services.WithPinAttempts(cfg.PinAttempts)}
	if cfg.AnswerPolicy == "reject" {
		opts = append(opts, services.WithAnswerPolicy(services.AnswerRejectDuplicate))
	}
	svc := services.NewGameService(st, opts...)

	admin := session.NewAdminSession(svc, st, cfg.AdminPollInterval)
	game, err := admin.CreateGame(ctx, "Friday Night Trivia", models.Settings{})
	if err != nil {
		return err
	}

	questions := []models.Question{
		{
			Text:          "Which planet has the most moons?",
			Options:       []string{"Earth", "Mars", "Saturn", "Venus"},
			CorrectAnswer: 3,
		},
		{
			Text:          "What is the largest ocean?",
			Options:       []string{"Atlantic", "Pacific", "Indian", "Arctic"},
			CorrectAnswer: 2,
			TimeLimit:     15,
		},
	}
	for _, q := range questions {
		if err := admin.AddQuestion(ctx, q); err != nil {
			return err
		}
	}

	admin.Watch(ctx, func(g *models.Game) {
		log.Printf("Admin sees game %s: status=%s players=%d question=%d",
			g.Pin, g.Status, len(g.Players), g.CurrentQuestion)
	})
	defer admin.StopWatching()

	players := make([]*session.PlayerSession, 2)
	for i, name := range []string{"ada", "grace"} {
		p := session.NewPlayerSession(svc, st, cfg.PlayerPollInterval)
		if err := p.Join(ctx, game.Pin, name); err != nil {
			return err
		}
		p.Watch(ctx, func(g *models.Game) {
			log.Printf("Player %s sees status=%s question=%d", name, g.Status, g.CurrentQuestion)
		}, func() {
			log.Printf("Player %s: game is gone", name)
		})
		defer p.Leave(ctx)
		players[i] = p
	}

	// Give the polling loops a tick to pick up the lobby.
	time.Sleep(cfg.AdminPollInterval + cfg.PlayerPollInterval)

	if err := admin.Start(ctx); err != nil {
		return err
	}

	// Question 1: ada answers fast and right, grace answers wrong.
	if _, err := players[0].Answer(ctx, 3, 4); err != nil {
		return err
	}
	if _, err := players[1].Answer(ctx, 1, 9); err != nil {
		return err
	}
	if err := admin.Advance(ctx); err != nil {
		return err
	}

	// Question 2: both right, grace faster.
	if _, err := players[0].Answer(ctx, 2, 8); err != nil {
		return err
	}
	if _, err := players[1].Answer(ctx, 2, 3); err != nil {
		return err
	}
	if err := admin.Advance(ctx); err != nil {
		return err
	}

	time.Sleep(cfg.PlayerPollInterval * 2)

	for _, entry := range admin.Leaderboard() {
		log.Printf("#%d %s - %d pts", entry.Position, entry.Name, entry.Score)
	}
	for _, stat := range admin.QuestionStats() {
		log.Printf("Question %d: %d/%d correct (%d%%)",
			stat.Index+1, stat.Correct, stat.Total, stat.Percentage)
	}
	return nil
}
