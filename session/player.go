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

// DefaultPlayerPollInterval is how often a player view re-reads the
// game. Players poll faster than the admin so question changes land
// promptly.
const DefaultPlayerPollInterval = time.Second

// PlayerSession is one player's side of a game: join by pin, answer
// the current question, watch for state changes, leave.
type PlayerSession struct {
	svc      *services.GameService
	store    store.GameStore
	interval time.Duration

	mu       sync.Mutex
	pin      string
	playerID string
	game     *models.Game
	obs      *monitor.Observer
	gone     bool
}

func NewPlayerSession(svc *services.GameService, st store.GameStore, interval time.Duration) *PlayerSession {
	if interval <= 0 {
		interval = DefaultPlayerPollInterval
	}
	return &PlayerSession{
		svc:      svc,
		store:    st,
		interval: interval,
	}
}

// Join enters the game under the given pin. The generated player id
// stays with this session until Leave.
func (p *PlayerSession) Join(ctx context.Context, pin string, playerName string) error {
	playerID, err := p.svc.JoinGame(ctx, pin, playerName)
	if err != nil {
		return err
	}

	game, err := p.svc.GetGame(ctx, pin)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.pin = pin
	p.playerID = playerID
	p.game = game
	p.gone = false
	p.mu.Unlock()

	log.Printf("Player %q joined game %s", playerName, pin)
	return nil
}

// Watch starts polling the joined game. onChange receives each fresh
// snapshot; onGone fires once if the game disappears from the store,
// after the session has already detached from it.
func (p *PlayerSession) Watch(ctx context.Context, onChange func(*models.Game), onGone func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.obs != nil || p.pin == "" {
		return
	}

	pin := p.pin
	p.obs = monitor.NewObserver(p.store, pin, p.interval, monitor.Callbacks{
		OnChange: func(game *models.Game) {
			p.mu.Lock()
			p.game = game
			p.mu.Unlock()
			if onChange != nil {
				onChange(game)
			}
		},
		OnMissing: func() {
			// The observer shuts itself down after this; detach so a
			// later Leave does not write to a deleted record.
			log.Printf("Game %s no longer exists", pin)
			p.mu.Lock()
			p.gone = true
			p.mu.Unlock()
			if onGone != nil {
				// Deliver off the observer goroutine so the handler
				// can call Leave without waiting on it.
				go onGone()
			}
		},
	})
	p.obs.Start(ctx)
}

// Answer submits the given 1-based option for the current question.
// timeTaken is the seconds the player spent, read off the displayed
// countdown.
func (p *PlayerSession) Answer(ctx context.Context, optionIndex int, timeTaken int) (services.AnswerResult, error) {
	p.mu.Lock()
	pin, playerID := p.pin, p.playerID
	p.mu.Unlock()

	if pin == "" {
		return services.AnswerResult{}, &services.ValidationError{Reason: "not in a game"}
	}
	return p.svc.SubmitAnswer(ctx, pin, playerID, optionIndex, timeTaken)
}

// Leave removes the player from the game and resets the session so it
// can join again. Leaving twice, or after the game vanished, is a
// no-op.
func (p *PlayerSession) Leave(ctx context.Context) error {
	p.mu.Lock()
	pin, playerID, gone := p.pin, p.playerID, p.gone
	obs := p.obs
	p.pin = ""
	p.playerID = ""
	p.game = nil
	p.obs = nil
	p.mu.Unlock()

	if obs != nil {
		obs.Stop()
	}
	if pin == "" || gone {
		return nil
	}
	return p.svc.LeaveGame(ctx, pin, playerID)
}

// PlayAgain leaves the current game; the caller can then Join anew.
func (p *PlayerSession) PlayAgain(ctx context.Context) error {
	return p.Leave(ctx)
}

// TopPlayers returns the first n leaderboard rows of the latest
// snapshot, the mini leaderboard shown beside the question.
func (p *PlayerSession) TopPlayers(n int) []services.LeaderboardEntry {
	game := p.Game()
	if game == nil {
		return nil
	}
	entries := p.svc.Leaderboard(game)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// FinalScore returns this player's score in the latest snapshot.
func (p *PlayerSession) FinalScore() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.game == nil {
		return 0
	}
	if player, ok := p.game.Players[p.playerID]; ok {
		return player.Score
	}
	return 0
}

// Game returns a snapshot of the latest observed game state.
func (p *PlayerSession) Game() *models.Game {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.game.Clone()
}

// PlayerID returns this session's player id, or "" before joining.
func (p *PlayerSession) PlayerID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playerID
}
