package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"pinquiz/models"
	"pinquiz/services"
	"pinquiz/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pollInterval = 5 * time.Millisecond

func questions() []models.Question {
	return []models.Question{
		{
			Text:          "Which planet has the most moons?",
			Options:       []string{"Earth", "Mars", "Saturn", "Venus"},
			CorrectAnswer: 3,
			TimeLimit:     20,
		},
		{
			Text:          "What is the largest ocean?",
			Options:       []string{"Atlantic", "Pacific", "Indian", "Arctic"},
			CorrectAnswer: 2,
			TimeLimit:     20,
		},
	}
}

func newFixture(t *testing.T) (*services.GameService, store.GameStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return services.NewGameService(st), st
}

func TestAdminAndPlayerShareTheStore(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t)

	admin := NewAdminSession(svc, st, pollInterval)
	game, err := admin.CreateGame(ctx, "integration quiz", models.Settings{})
	require.NoError(t, err)
	for _, q := range questions() {
		require.NoError(t, admin.AddQuestion(ctx, q))
	}

	var adminSaw atomic.Int32
	admin.Watch(ctx, func(*models.Game) { adminSaw.Add(1) })
	defer admin.StopWatching()

	player := NewPlayerSession(svc, st, pollInterval)
	require.NoError(t, player.Join(ctx, game.Pin, "ada"))

	var playerStatus atomic.Value
	playerStatus.Store("")
	player.Watch(ctx, func(g *models.Game) {
		playerStatus.Store(g.Status)
	}, nil)
	defer player.Leave(ctx)

	// The admin's polled snapshot picks up the join.
	require.Eventually(t, func() bool {
		g := admin.Game()
		return g != nil && len(g.Players) == 1
	}, time.Second, pollInterval)

	require.NoError(t, admin.Start(ctx))

	// The player's polled snapshot picks up the start.
	require.Eventually(t, func() bool {
		return playerStatus.Load() == models.StatusPlaying
	}, time.Second, pollInterval)

	result, err := player.Answer(ctx, 3, 4)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 18, result.PointsAwarded)

	require.NoError(t, admin.Advance(ctx))
	result, err = player.Answer(ctx, 2, 10)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 15, result.PointsAwarded)

	// Advancing past the last question finishes the game.
	require.NoError(t, admin.Advance(ctx))
	require.Eventually(t, func() bool {
		return playerStatus.Load() == models.StatusFinished
	}, time.Second, pollInterval)

	// 18 + 15 answer points + 10 first-place bonus.
	require.Eventually(t, func() bool {
		return player.FinalScore() == 43
	}, time.Second, pollInterval)

	board := admin.Leaderboard()
	require.Len(t, board, 1)
	assert.Equal(t, "ada", board[0].Name)
	assert.Equal(t, 43, board[0].Score)
	assert.Equal(t, 1, board[0].Position)

	stats := admin.QuestionStats()
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Correct)
	assert.Equal(t, 100, stats[0].Percentage)

	assert.Greater(t, adminSaw.Load(), int32(0))
}

func TestPlayerMiniLeaderboard(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t)

	admin := NewAdminSession(svc, st, pollInterval)
	game, err := admin.CreateGame(ctx, "crowded quiz", models.Settings{})
	require.NoError(t, err)
	require.NoError(t, admin.AddQuestion(ctx, questions()[0]))

	players := make([]*PlayerSession, 7)
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		players[i] = NewPlayerSession(svc, st, pollInterval)
		require.NoError(t, players[i].Join(ctx, game.Pin, name))
	}

	require.NoError(t, admin.Start(ctx))

	// Give the first few players distinct scores.
	for i, timeTaken := range []int{2, 6, 10} {
		_, err := players[i].Answer(ctx, 3, timeTaken)
		require.NoError(t, err)
	}

	players[0].Watch(ctx, nil, nil)
	defer players[0].Leave(ctx)

	require.Eventually(t, func() bool {
		return len(players[0].TopPlayers(5)) == 5
	}, time.Second, pollInterval)

	top := players[0].TopPlayers(5)
	assert.Equal(t, "a", top[0].Name)
	assert.Equal(t, "b", top[1].Name)
	assert.Equal(t, "c", top[2].Name)
}

func TestPlayerLeaveRemovesFromGame(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t)

	admin := NewAdminSession(svc, st, pollInterval)
	game, err := admin.CreateGame(ctx, "quiz", models.Settings{})
	require.NoError(t, err)

	player := NewPlayerSession(svc, st, pollInterval)
	require.NoError(t, player.Join(ctx, game.Pin, "ada"))
	playerID := player.PlayerID()
	require.NotEmpty(t, playerID)

	require.NoError(t, player.Leave(ctx))
	assert.Empty(t, player.PlayerID())

	stored, err := svc.GetGame(ctx, game.Pin)
	require.NoError(t, err)
	assert.NotContains(t, stored.Players, playerID)

	// Leaving twice is a no-op.
	assert.NoError(t, player.Leave(ctx))
}

func TestPlayerNotifiedWhenGameVanishes(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t)

	admin := NewAdminSession(svc, st, pollInterval)
	game, err := admin.CreateGame(ctx, "doomed quiz", models.Settings{})
	require.NoError(t, err)

	player := NewPlayerSession(svc, st, pollInterval)
	require.NoError(t, player.Join(ctx, game.Pin, "ada"))

	var gone atomic.Bool
	player.Watch(ctx, nil, func() {
		gone.Store(true)
	})

	require.NoError(t, st.Delete(ctx, game.Pin))

	require.Eventually(t, func() bool {
		return gone.Load()
	}, time.Second, pollInterval)

	// Leave after the game vanished must not recreate or touch the
	// record; it just resets the session.
	require.NoError(t, player.Leave(ctx))
	_, err = svc.GetGame(ctx, game.Pin)
	var notFound *services.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAnswerWithoutJoining(t *testing.T) {
	svc, st := newFixture(t)
	player := NewPlayerSession(svc, st, pollInterval)

	_, err := player.Answer(context.Background(), 1, 5)
	var validation *services.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestAdminResumeLatest(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t)

	first := NewAdminSession(svc, st, pollInterval)
	_, err := first.CreateGame(ctx, "older", models.Settings{})
	require.NoError(t, err)
	newer, err := first.CreateGame(ctx, "newer", models.Settings{})
	require.NoError(t, err)

	// A fresh admin view picks up where the last one left off.
	second := NewAdminSession(svc, st, pollInterval)
	resumed, err := second.ResumeLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.Pin, resumed.Pin)
}
