package domain

import "time"

// Rating is a user's score for a task, unique per (user, task).
type Rating struct {
	UserID    string
	TaskID    string
	Score     int // 1..5
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Engagement aggregates a task's social counters together with the
// requesting user's own state.
type Engagement struct {
	TaskID        string
	LikeCount     int
	FavoriteCount int
	RatingAvg     float64
	RatingCount   int
	Liked         bool
	Favorited     bool
	OwnRating     *int
}
