// Package memory is a mutex-guarded store for development and tests.
// It is correct only within a single process; use postgres when running
// more than one replica.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/repository"
)

type Store struct {
	mu          sync.RWMutex
	now         func() time.Time
	profiles    map[string]*domain.Profile
	requests    map[string]*domain.FriendRequest
	pending     map[string]string // pair key -> request id
	friendships map[string]*domain.Friendship
}

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:         func() time.Time { return time.Now().UTC() },
		profiles:    make(map[string]*domain.Profile),
		requests:    make(map[string]*domain.FriendRequest),
		pending:     make(map[string]string),
		friendships: make(map[string]*domain.Friendship),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Profiles() repository.ProfileRepository {
	return &profileRepository{s: s}
}

func (s *Store) FriendRequests() repository.FriendRequestRepository {
	return &friendRequestRepository{s: s}
}

func (s *Store) Friendships() repository.FriendshipRepository {
	return &friendshipRepository{s: s}
}

func copyProfile(p *domain.Profile) *domain.Profile {
	c := *p
	c.Sports = append([]string(nil), p.Sports...)
	return &c
}

func copyRequest(r *domain.FriendRequest) *domain.FriendRequest {
	c := *r
	return &c
}

type profileRepository struct {
	s *Store
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return domain.Transient("store call cancelled", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[profile.UserID]; ok {
		return domain.ErrProfileAlreadyExists
	}
	now := r.s.now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.Sports == nil {
		profile.Sports = []string{}
	}
	r.s.profiles[profile.UserID] = copyProfile(profile)
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return copyProfile(p), nil
}

func (r *profileRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.s.profiles[id]; ok {
			out = append(out, copyProfile(p))
		}
	}
	return out, nil
}

func (r *profileRepository) CompleteSurvey(ctx context.Context, userID string, survey domain.Survey) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	level := survey.GymLevel
	goal := survey.WorkoutGoal
	age, weight, feet, inches := survey.Age, survey.WeightLbs, survey.HeightFeet, survey.HeightInches
	p.Age = &age
	p.WeightLbs = &weight
	p.HeightFeet = &feet
	p.HeightInches = &inches
	p.GymLevel = &level
	p.WorkoutGoal = &goal
	p.Sports = append([]string(nil), survey.Sports...)
	p.SurveyCompleted = true
	p.UpdatedAt = r.s.now()
	return copyProfile(p), nil
}

func (r *profileRepository) UpdateSports(ctx context.Context, userID string, sports []string) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Sports = append([]string{}, sports...)
	p.UpdatedAt = r.s.now()
	return copyProfile(p), nil
}

func (r *profileRepository) ListMatchable(ctx context.Context, afterUserID string, exclude []string, limit int) ([]*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	r.s.mu.RLock()
	out := make([]*domain.Profile, 0)
	for id, p := range r.s.profiles {
		if _, ok := skip[id]; ok || !p.SurveyCompleted || id <= afterUserID {
			continue
		}
		out = append(out, copyProfile(p))
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type friendRequestRepository struct {
	s *Store
}

func (r *friendRequestRepository) CreatePending(ctx context.Context, fromUserID, toUserID string) (*domain.FriendRequest, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, domain.Transient("store call cancelled", err)
	}
	key := domain.PairKey(fromUserID, toUserID)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.friendships[key]; ok {
		return nil, false, domain.ErrAlreadyFriends
	}
	if id, ok := r.s.pending[key]; ok {
		return copyRequest(r.s.requests[id]), false, nil
	}

	req := &domain.FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.FriendRequestPending,
		CreatedAt:  r.s.now(),
	}
	r.s.requests[req.ID] = req
	r.s.pending[key] = req.ID
	return copyRequest(req), true, nil
}

func (r *friendRequestRepository) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, domain.ErrFriendRequestNotFound
	}
	return copyRequest(req), nil
}

func (r *friendRequestRepository) Resolve(ctx context.Context, id, responderID string, status domain.FriendRequestStatus) (*domain.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	switch {
	case !ok:
		return nil, domain.ErrFriendRequestNotFound
	case req.ToUserID != responderID:
		return nil, domain.ErrNotRequestRecipient
	case req.Status != domain.FriendRequestPending:
		return nil, domain.ErrRequestNotPending
	}

	now := r.s.now()
	req.Status = status
	req.RespondedAt = &now
	delete(r.s.pending, req.PairKey())

	if status == domain.FriendRequestAccepted {
		low, high := domain.OrderPair(req.FromUserID, req.ToUserID)
		key := req.PairKey()
		if _, exists := r.s.friendships[key]; !exists {
			r.s.friendships[key] = &domain.Friendship{
				UserLow:   low,
				UserHigh:  high,
				RequestID: req.ID,
				CreatedAt: now,
			}
		}
	}
	return copyRequest(req), nil
}

func (r *friendRequestRepository) ListPendingForRecipient(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.RLock()
	out := make([]*domain.FriendRequest, 0)
	for _, id := range r.s.pending {
		req := r.s.requests[id]
		if req.ToUserID == userID {
			out = append(out, copyRequest(req))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *friendRequestRepository) ListPendingCounterparts(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]string, 0)
	for _, id := range r.s.pending {
		if other, ok := r.s.requests[id].Counterpart(userID); ok {
			out = append(out, other)
		}
	}
	sort.Strings(out)
	return out, nil
}

type friendshipRepository struct {
	s *Store
}

func (r *friendshipRepository) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, domain.Transient("store call cancelled", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.friendships[domain.PairKey(userA, userB)]
	return ok, nil
}

func (r *friendshipRepository) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Transient("store call cancelled", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]string, 0)
	for _, f := range r.s.friendships {
		switch userID {
		case f.UserLow:
			out = append(out, f.UserHigh)
		case f.UserHigh:
			out = append(out, f.UserLow)
		}
	}
	sort.Strings(out)
	return out, nil
}
