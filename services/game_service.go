package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"pinquiz/models"
	"pinquiz/store"

	"github.com/google/uuid"
)

const (
	pinMin  = 100000
	pinSpan = 900000

	// DefaultPinAttempts bounds the collision-retry loop when drawing a
	// fresh PIN. The namespace holds 900,000 pins, so hitting the bound
	// means the store is pathologically full.
	DefaultPinAttempts = 100

	basePoints = 10
)

// AnswerPolicy decides what happens when a player answers the same
// question twice. Overwrite lets players change their answer;
// RejectDuplicate keeps the first one and ignores the rest.
type AnswerPolicy int

const (
	AnswerOverwrite AnswerPolicy = iota
	AnswerRejectDuplicate
)

// GameService owns every legal transition of a game record. All
// operations read the full record from the store, validate, mutate,
// and write the full record back. A failed operation never writes, so
// the stored record is untouched on error.
type GameService struct {
	store        store.GameStore
	pinAttempts  int
	answerPolicy AnswerPolicy
}

type Option func(*GameService)

// WithPinAttempts bounds the PIN collision-retry loop.
func WithPinAttempts(n int) Option {
	return func(s *GameService) {
		if n > 0 {
			s.pinAttempts = n
		}
	}
}

// WithAnswerPolicy selects the duplicate-answer behavior.
func WithAnswerPolicy(p AnswerPolicy) Option {
	return func(s *GameService) {
		s.answerPolicy = p
	}
}

func NewGameService(st store.GameStore, opts ...Option) *GameService {
	s := &GameService{
		store:        st,
		pinAttempts:  DefaultPinAttempts,
		answerPolicy: AnswerOverwrite,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerResult reports the outcome of a single answer submission.
type AnswerResult struct {
	Correct       bool `json:"correct"`
	PointsAwarded int  `json:"pointsAwarded"`
}

// CreateGame allocates a free PIN and stores a new game in the waiting
// state. Zero-valued settings fall back to the defaults: a 20 second
// time limit and 10/7/5/2 bonus points.
func (s *GameService) CreateGame(ctx context.Context, name string, settings models.Settings) (*models.Game, error) {
	if name == "" {
		name = "My Quiz Game"
	}
	applyDefaultSettings(&settings)

	pin, err := s.generatePin(ctx)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		Pin:       pin,
		Name:      name,
		Status:    models.StatusWaiting,
		Players:   make(map[string]*models.Player),
		Questions: []models.Question{},
		CreatedAt: time.Now().UTC(),
		Settings:  settings,
	}

	if err := s.store.Put(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// generatePin draws uniformly from the 6-digit numeric namespace and
// rejects pins already present in the store. The retry loop is bounded
// so a contended namespace fails instead of spinning forever.
func (s *GameService) generatePin(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.pinAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(pinSpan))
		if err != nil {
			return "", fmt.Errorf("failed to draw pin: %w", err)
		}
		pin := strconv.Itoa(pinMin + int(n.Int64()))

		_, err = s.store.Get(ctx, pin)
		if errors.Is(err, store.ErrGameNotFound) {
			return pin, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", &ResourceExhaustedError{Resource: "game pin", Attempts: s.pinAttempts}
}

func applyDefaultSettings(settings *models.Settings) {
	if settings.TimeLimit <= 0 {
		settings.TimeLimit = models.DefaultTimeLimit
	}
	if settings.Points == (models.BonusPoints{}) {
		settings.Points = models.BonusPoints{
			First:         10,
			Second:        7,
			Third:         5,
			Participation: 2,
		}
	}
}

// GetGame returns the stored game for a PIN.
func (s *GameService) GetGame(ctx context.Context, pin string) (*models.Game, error) {
	return s.loadGame(ctx, pin)
}

// LatestGame returns the most recently created game, the record an
// admin picks back up when reopening their view.
func (s *GameService) LatestGame(ctx context.Context) (*models.Game, error) {
	games, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, &NotFoundError{Resource: "game"}
	}

	latest := games[0]
	for _, g := range games[1:] {
		if g.CreatedAt.After(latest.CreatedAt) {
			latest = g
		}
	}
	return latest, nil
}

// AddQuestion validates and appends a question, returning the updated
// game. The question's time limit defaults when unset.
func (s *GameService) AddQuestion(ctx context.Context, pin string, question models.Question) (*models.Game, error) {
	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return nil, err
	}

	if question.TimeLimit <= 0 {
		question.TimeLimit = models.DefaultTimeLimit
	}
	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	game.Questions = append(game.Questions, question)
	if err := s.store.Put(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

func validateQuestion(q models.Question) error {
	if q.Text == "" {
		return &ValidationError{Reason: "question text is required"}
	}
	if len(q.Options) != models.OptionCount {
		return &ValidationError{Reason: fmt.Sprintf("exactly %d options are required", models.OptionCount)}
	}
	for i, opt := range q.Options {
		if opt == "" {
			return &ValidationError{Reason: fmt.Sprintf("option %d is empty", i+1)}
		}
	}
	if q.CorrectAnswer < 1 || q.CorrectAnswer > models.OptionCount {
		return &ValidationError{Reason: fmt.Sprintf("correct answer must be between 1 and %d", models.OptionCount)}
	}
	return nil
}

// DeleteQuestion removes the question at the given position.
func (s *GameService) DeleteQuestion(ctx context.Context, pin string, index int) (*models.Game, error) {
	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(game.Questions) {
		return nil, &IndexError{Index: index, Length: len(game.Questions)}
	}

	game.Questions = append(game.Questions[:index], game.Questions[index+1:]...)
	if err := s.store.Put(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// JoinGame adds a new player to the game and returns the generated
// player id.
func (s *GameService) JoinGame(ctx context.Context, pin string, playerName string) (string, error) {
	if playerName == "" {
		return "", &ValidationError{Reason: "player name is required"}
	}

	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return "", err
	}

	playerID := uuid.NewString()
	game.Players[playerID] = &models.Player{
		Name:      playerName,
		Score:     0,
		Connected: true,
		JoinedAt:  time.Now().UTC(),
		Answers:   make(map[int]int),
	}

	if err := s.store.Put(ctx, game); err != nil {
		return "", err
	}
	return playerID, nil
}

// StartGame moves the game from waiting to playing, resetting every
// player's score and answers.
func (s *GameService) StartGame(ctx context.Context, pin string) (*models.Game, error) {
	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return nil, err
	}

	if game.Status != models.StatusWaiting {
		return nil, &ValidationError{Reason: fmt.Sprintf("game has status %q - cannot start", game.Status)}
	}
	if len(game.Questions) == 0 {
		return nil, &ValidationError{Reason: "at least one question is required to start"}
	}

	now := time.Now().UTC()
	game.Status = models.StatusPlaying
	game.CurrentQuestion = 0
	game.StartedAt = &now
	for _, player := range game.Players {
		player.Score = 0
		player.Answers = make(map[int]int)
		player.Position = 0
	}

	if err := s.store.Put(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// AdvanceQuestion moves to the next question, or finishes the game
// when the current question is the last one. Outside the playing state
// it returns the game unchanged.
func (s *GameService) AdvanceQuestion(ctx context.Context, pin string) (*models.Game, error) {
	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return nil, err
	}

	if game.Status != models.StatusPlaying {
		return game, nil
	}

	if game.CurrentQuestion >= len(game.Questions)-1 {
		return s.finishGame(ctx, game)
	}

	game.CurrentQuestion++
	if err := s.store.Put(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// EndGame finishes the game and applies final scoring. Calling it on
// an already finished game is a no-op: positions and bonus points are
// applied exactly once, on the transition into the finished state.
func (s *GameService) EndGame(ctx context.Context, pin string) (*models.Game, error) {
	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return nil, err
	}

	if game.Status == models.StatusFinished {
		return game, nil
	}
	return s.finishGame(ctx, game)
}

func (s *GameService) finishGame(ctx context.Context, game *models.Game) (*models.Game, error) {
	now := time.Now().UTC()
	game.Status = models.StatusFinished
	game.EndedAt = &now
	applyFinalScores(game)

	if err := s.store.Put(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// SubmitAnswer records a player's answer to the current question and
// awards points when it is correct. timeTaken is the caller's reading
// of the countdown, not an internally tracked timer. Submissions
// outside the playing state, or from unknown players, are silently
// ignored.
func (s *GameService) SubmitAnswer(ctx context.Context, pin string, playerID string, optionIndex int, timeTaken int) (AnswerResult, error) {
	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return AnswerResult{}, err
	}

	if game.Status != models.StatusPlaying {
		return AnswerResult{}, nil
	}
	player, ok := game.Players[playerID]
	if !ok {
		return AnswerResult{}, nil
	}
	if game.CurrentQuestion >= len(game.Questions) {
		return AnswerResult{}, nil
	}

	if optionIndex < 1 || optionIndex > models.OptionCount {
		return AnswerResult{}, &ValidationError{Reason: fmt.Sprintf("option must be between 1 and %d", models.OptionCount)}
	}

	if _, answered := player.Answers[game.CurrentQuestion]; answered && s.answerPolicy == AnswerRejectDuplicate {
		return AnswerResult{}, nil
	}

	question := game.Questions[game.CurrentQuestion]
	player.Answers[game.CurrentQuestion] = optionIndex

	var result AnswerResult
	if optionIndex == question.CorrectAnswer {
		points := answerPoints(timeTaken, question.TimeLimit)
		player.Score += points
		result = AnswerResult{Correct: true, PointsAwarded: points}
	}

	if err := s.store.Put(ctx, game); err != nil {
		return AnswerResult{}, err
	}
	return result, nil
}

// LeaveGame removes the player from the game entirely.
func (s *GameService) LeaveGame(ctx context.Context, pin string, playerID string) error {
	game, err := s.loadGame(ctx, pin)
	if err != nil {
		return err
	}

	if _, ok := game.Players[playerID]; !ok {
		return &NotFoundError{Resource: "player", ID: playerID}
	}

	delete(game.Players, playerID)
	return s.store.Put(ctx, game)
}

func (s *GameService) loadGame(ctx context.Context, pin string) (*models.Game, error) {
	game, err := s.store.Get(ctx, pin)
	if errors.Is(err, store.ErrGameNotFound) {
		return nil, &NotFoundError{Resource: "game", ID: pin}
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}
