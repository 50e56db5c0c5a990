// Package session gives each client role an object that owns its view
// of one game: the admin's current game and the player's id live here,
// passed explicitly into every operation instead of floating in
// ambient globals.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"pinquiz/models"
	"pinquiz/monitor"
	"pinquiz/services"
	"pinquiz/store"
)

// DefaultAdminPollInterval is how often the admin view re-reads its
// game from the store.
const DefaultAdminPollInterval = 2 * time.Second

// AdminSession is the host's side of a game: it creates and configures
// the game, drives its lifecycle, and keeps a polled snapshot fresh.
type AdminSession struct {
	svc      *services.GameService
	store    store.GameStore
	interval time.Duration

	mu   sync.Mutex
	game *models.Game
	obs  *monitor.Observer
}

func NewAdminSession(svc *services.GameService, st store.GameStore, interval time.Duration) *AdminSession {
	if interval <= 0 {
		interval = DefaultAdminPollInterval
	}
	return &AdminSession{
		svc:      svc,
		store:    st,
		interval: interval,
	}
}

// CreateGame creates a fresh game and makes it this session's current
// game.
func (a *AdminSession) CreateGame(ctx context.Context, name string, settings models.Settings) (*models.Game, error) {
	game, err := a.svc.CreateGame(ctx, name, settings)
	if err != nil {
		return nil, err
	}

	a.setGame(game)
	log.Printf("Game %q created - share pin %s with players", game.Name, game.Pin)
	return game, nil
}

// ResumeLatest adopts the most recently created game, the behavior of
// an admin view loading whatever it was hosting before.
func (a *AdminSession) ResumeLatest(ctx context.Context) (*models.Game, error) {
	game, err := a.svc.LatestGame(ctx)
	if err != nil {
		return nil, err
	}
	a.setGame(game)
	return game, nil
}

func (a *AdminSession) AddQuestion(ctx context.Context, question models.Question) error {
	game, err := a.svc.AddQuestion(ctx, a.Pin(), question)
	if err != nil {
		return err
	}
	a.setGame(game)
	return nil
}

func (a *AdminSession) DeleteQuestion(ctx context.Context, index int) error {
	game, err := a.svc.DeleteQuestion(ctx, a.Pin(), index)
	if err != nil {
		return err
	}
	a.setGame(game)
	return nil
}

func (a *AdminSession) Start(ctx context.Context) error {
	game, err := a.svc.StartGame(ctx, a.Pin())
	if err != nil {
		return err
	}
	a.setGame(game)
	log.Printf("Game %s started with %d questions", game.Pin, len(game.Questions))
	return nil
}

func (a *AdminSession) Advance(ctx context.Context) error {
	game, err := a.svc.AdvanceQuestion(ctx, a.Pin())
	if err != nil {
		return err
	}
	a.setGame(game)
	return nil
}

func (a *AdminSession) End(ctx context.Context) error {
	game, err := a.svc.EndGame(ctx, a.Pin())
	if err != nil {
		return err
	}
	a.setGame(game)
	log.Printf("Game %s ended", game.Pin)
	return nil
}

// Watch starts polling the current game, invoking onChange with every
// fresh snapshot. The session keeps its own copy current as well.
func (a *AdminSession) Watch(ctx context.Context, onChange func(*models.Game)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.obs != nil || a.game == nil {
		return
	}

	a.obs = monitor.NewObserver(a.store, a.game.Pin, a.interval, monitor.Callbacks{
		OnChange: func(game *models.Game) {
			a.setGame(game)
			if onChange != nil {
				onChange(game)
			}
		},
		OnMissing: func() {
			log.Printf("Game %s disappeared from the store", a.Pin())
		},
	})
	a.obs.Start(ctx)
}

// StopWatching cancels the polling loop. Safe to call repeatedly.
func (a *AdminSession) StopWatching() {
	a.mu.Lock()
	obs := a.obs
	a.obs = nil
	a.mu.Unlock()

	if obs != nil {
		obs.Stop()
	}
}

// Leaderboard ranks the current snapshot's players.
func (a *AdminSession) Leaderboard() []services.LeaderboardEntry {
	game := a.Game()
	if game == nil {
		return nil
	}
	return a.svc.Leaderboard(game)
}

// QuestionStats summarizes answers per question for the results view.
func (a *AdminSession) QuestionStats() []services.QuestionStat {
	game := a.Game()
	if game == nil {
		return nil
	}
	return a.svc.QuestionStats(game)
}

// Game returns a snapshot of the session's current game, or nil when
// no game has been created or resumed yet.
func (a *AdminSession) Game() *models.Game {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.Clone()
}

// Pin returns the current game's pin, or "" without a game.
func (a *AdminSession) Pin() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.game == nil {
		return ""
	}
	return a.game.Pin
}

func (a *AdminSession) setGame(game *models.Game) {
	a.mu.Lock()
	a.game = game
	a.mu.Unlock()
}
