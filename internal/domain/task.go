package domain

import "time"

// TaskStatus enumerates lifecycle states of a generation task.
type TaskStatus string

const (
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// Task is a history record of a metered feature invocation.
type Task struct {
	ID            string
	UserID        string
	Feature       Feature
	Status        TaskStatus
	Quantity      int
	Width         int
	Height        int
	CreditsSpent  int
	Country       string
	Prompt        string
	ErrorMessage  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LikeCount     int
	FavoriteCount int
	RatingAvg     float64
}
