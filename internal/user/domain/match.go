package domain

import "time"

// Match is a finished pong game between two registered players.
type Match struct {
	ID           string    `json:"id"`
	Player1ID    string    `json:"player1_id"`
	Player2ID    string    `json:"player2_id"`
	WinnerID     string    `json:"winner_id"`
	ScorePlayer1 int       `json:"score_player1"`
	ScorePlayer2 int       `json:"score_player2"`
	PlayedAt     time.Time `json:"played_at"`
}

// PlayerStats are per-user aggregates computed over recorded matches.
type PlayerStats struct {
	UserID       string `json:"user_id"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
}
