package handlers

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pixelmint/backend/internal/domain"
	"github.com/pixelmint/backend/internal/permission"
)

// fakeRepos implements every repository interface against in-memory maps.
type fakeRepos struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	entitlement domain.Entitlement
	balance     int
	usage       int
	tasks       map[string]*domain.Task
	likes       map[string]map[string]bool // taskID -> userID
	ratings     map[string]map[string]int
}

func newFakeRepos() *fakeRepos {
	daily := 5
	return &fakeRepos{
		users: map[string]*domain.User{},
		entitlement: domain.Entitlement{
			Plan: domain.Plan{
				Code:           domain.PlanFree,
				Name:           "Free",
				Features:       domain.NewFeatureSet(domain.FeatureImageGenerate),
				CreditsMonthly: 20,
				DailyUsage:     &daily,
				Priority:       "low",
			},
			Status: domain.SubscriptionFree,
		},
		balance: 20,
		tasks:   map[string]*domain.Task{},
		likes:   map[string]map[string]bool{},
		ratings: map[string]map[string]int{},
	}
}

func (f *fakeRepos) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = "u-" + user.Email
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepos) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepos) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepos) GetEntitlement(ctx context.Context, userID string) (*domain.Entitlement, error) {
	ent := f.entitlement
	return &ent, nil
}

func (f *fakeRepos) Balance(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

func (f *fakeRepos) DecrementIfAvailable(ctx context.Context, userID string, cost int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balance < cost {
		return 0, domain.ErrNotFound
	}
	f.balance -= cost
	return f.balance, nil
}

func (f *fakeRepos) Grant(ctx context.Context, userID string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balance += amount
	return nil
}

func (f *fakeRepos) DailyUsage(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usage, nil
}

func (f *fakeRepos) CreateTask(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == "" {
		task.ID = "t-1"
	}
	f.tasks[task.ID] = task
	f.usage += task.Quantity
	return nil
}

func (f *fakeRepos) GetTaskByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepos) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeRepos) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	t.ErrorMessage = errMsg
	return nil
}

func (f *fakeRepos) Like(ctx context.Context, userID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[taskID]; !ok {
		return domain.ErrNotFound
	}
	if f.likes[taskID] == nil {
		f.likes[taskID] = map[string]bool{}
	}
	f.likes[taskID][userID] = true
	return nil
}

func (f *fakeRepos) Unlike(ctx context.Context, userID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.likes[taskID], userID)
	return nil
}

func (f *fakeRepos) Favorite(ctx context.Context, userID, taskID string) error {
	return f.Like(ctx, userID, taskID)
}

func (f *fakeRepos) Unfavorite(ctx context.Context, userID, taskID string) error {
	return f.Unlike(ctx, userID, taskID)
}

func (f *fakeRepos) UpsertRating(ctx context.Context, rating *domain.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[rating.TaskID]; !ok {
		return domain.ErrNotFound
	}
	if f.ratings[rating.TaskID] == nil {
		f.ratings[rating.TaskID] = map[string]int{}
	}
	f.ratings[rating.TaskID][rating.UserID] = rating.Score
	return nil
}

func (f *fakeRepos) GetEngagement(ctx context.Context, taskID, userID string) (*domain.Engagement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[taskID]; !ok {
		return nil, domain.ErrNotFound
	}
	e := &domain.Engagement{TaskID: taskID, LikeCount: len(f.likes[taskID]), Liked: f.likes[taskID][userID]}
	if score, ok := f.ratings[taskID][userID]; ok {
		e.OwnRating = &score
		e.RatingCount = len(f.ratings[taskID])
		e.RatingAvg = float64(score)
	}
	return e, nil
}

// taskRepoAdapter renames fakeRepos methods to satisfy domain.TaskRepository,
// whose Create clashes with UserRepository.Create.
type taskRepoAdapter struct{ f *fakeRepos }

func (a taskRepoAdapter) Create(ctx context.Context, task *domain.Task) error {
	return a.f.CreateTask(ctx, task)
}

func (a taskRepoAdapter) GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	return a.f.GetTaskByID(ctx, taskID, userID)
}

func (a taskRepoAdapter) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Task, error) {
	return a.f.ListByUser(ctx, userID, limit, offset)
}

func (a taskRepoAdapter) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, errMsg *string) error {
	return a.f.UpdateStatus(ctx, taskID, status, errMsg)
}

func newTestApp(f *fakeRepos) *App {
	gate := permission.NewGate(permission.Store{Entitlements: f, Credits: f, Usage: f}, 0, zerolog.Nop())
	return &App{
		Logger:      zerolog.Nop(),
		Gate:        gate,
		Users:       f,
		Tasks:       taskRepoAdapter{f: f},
		Engagements: f,
		Usage:       f,
	}
}
