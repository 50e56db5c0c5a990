package services

import (
	"math"
	"sort"

	"pinquiz/models"
)

// LeaderboardEntry is one row of a ranked player listing.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// QuestionStat summarizes how a single question was answered across
// all players.
type QuestionStat struct {
	Index      int `json:"index"`
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// answerPoints is the per-answer award for a correct submission:
// 10 base points plus a time bonus of at least 1.
func answerPoints(timeTaken, timeLimit int) int {
	bonus := (timeLimit - timeTaken) / 2
	if bonus < 1 {
		bonus = 1
	}
	return basePoints + bonus
}

// Leaderboard returns players ranked by score, highest first. Ties
// keep join order, so an earlier joiner outranks a later one with the
// same score.
func (s *GameService) Leaderboard(game *models.Game) []LeaderboardEntry {
	return rankPlayers(game)
}

func rankPlayers(game *models.Game) []LeaderboardEntry {
	ids := make([]string, 0, len(game.Players))
	for id := range game.Players {
		ids = append(ids, id)
	}

	// Join order stands in for insertion order; the player id breaks
	// the (unlikely) case of identical join timestamps so ranking is
	// deterministic.
	sort.Slice(ids, func(i, j int) bool {
		a, b := game.Players[ids[i]], game.Players[ids[j]]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return ids[i] < ids[j]
	})

	entries := make([]LeaderboardEntry, len(ids))
	for i, id := range ids {
		player := game.Players[id]
		entries[i] = LeaderboardEntry{
			PlayerID: id,
			Name:     player.Name,
			Score:    player.Score,
			Position: i + 1,
		}
	}
	return entries
}

// applyFinalScores assigns 1-based positions and adds the positional
// bonus to each player's score. It runs exactly once, on the
// transition into the finished state.
func applyFinalScores(game *models.Game) {
	for i, entry := range rankPlayers(game) {
		player := game.Players[entry.PlayerID]
		player.Score += bonusFor(game.Settings.Points, i)
		player.Position = i + 1
	}
}

// bonusFor picks the award for a final rank. A podium tier left at
// zero falls back to the participation award, so a game configured
// with fewer than three tiers still pays every finisher.
func bonusFor(points models.BonusPoints, rank int) int {
	var tier int
	switch rank {
	case 0:
		tier = points.First
	case 1:
		tier = points.Second
	case 2:
		tier = points.Third
	default:
		return points.Participation
	}
	if tier == 0 {
		return points.Participation
	}
	return tier
}

// QuestionStats reports, per question, how many players answered
// correctly and what share of the lobby that is.
func (s *GameService) QuestionStats(game *models.Game) []QuestionStat {
	total := len(game.Players)
	stats := make([]QuestionStat, len(game.Questions))
	for i, question := range game.Questions {
		correct := 0
		for _, player := range game.Players {
			if player.Answers[i] == question.CorrectAnswer {
				correct++
			}
		}

		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(correct) / float64(total) * 100))
		}
		stats[i] = QuestionStat{
			Index:      i,
			Correct:    correct,
			Total:      total,
			Percentage: percentage,
		}
	}
	return stats
}
