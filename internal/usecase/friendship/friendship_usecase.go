package friendship

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/observability"
	"github.com/gdugdh24/recapp-backend/internal/repository"
)

// MatchInvalidator drops cached match lists after relationship changes.
type MatchInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

type FriendshipUseCase struct {
	profileRepo repository.ProfileRepository
	requestRepo repository.FriendRequestRepository
	friendRepo  repository.FriendshipRepository
	invalidator MatchInvalidator
	logger      *slog.Logger
}

func NewFriendshipUseCase(
	profileRepo repository.ProfileRepository,
	requestRepo repository.FriendRequestRepository,
	friendRepo repository.FriendshipRepository,
	invalidator MatchInvalidator,
	logger *slog.Logger,
) *FriendshipUseCase {
	return &FriendshipUseCase{
		profileRepo: profileRepo,
		requestRepo: requestRepo,
		friendRepo:  friendRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// SendRequest represents a friend request submission
type SendRequest struct {
	FromUser string `json:"from_user" binding:"required"`
	ToUser   string `json:"to_user" binding:"required"`
}

// RespondRequest represents the recipient's decision
type RespondRequest struct {
	RequestID string          `json:"request_id" binding:"required"`
	Response  domain.Decision `json:"response" binding:"required"`
}

// PendingRequest is a pending request as shown in the recipient's inbox
type PendingRequest struct {
	ID            string                     `json:"id"`
	FromUser      string                     `json:"from_user"`
	FromUserName  string                     `json:"from_user_name"`
	FromUserPhoto *string                    `json:"from_user_photo,omitempty"`
	ToUser        string                     `json:"to_user"`
	Status        domain.FriendRequestStatus `json:"status"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// Friend is a friend as shown in the friends list
type Friend struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photoURL,omitempty"`
}

// SendFriendRequest creates a pending request from the caller, or returns
// the pair's existing pending request with created=false.
func (uc *FriendshipUseCase) SendFriendRequest(ctx context.Context, callerID string, req *SendRequest) (*domain.FriendRequest, bool, error) {
	from := strings.TrimSpace(req.FromUser)
	to := strings.TrimSpace(req.ToUser)

	if callerID != from {
		return nil, false, domain.ErrForbidden
	}
	if from == to {
		return nil, false, domain.ErrCannotFriendSelf
	}

	profiles, err := uc.profileRepo.GetByUserIDs(ctx, []string{from, to})
	if err != nil {
		return nil, false, err
	}
	if len(profiles) != 2 {
		return nil, false, domain.ErrProfileNotFound
	}

	fr, created, err := uc.requestRepo.CreatePending(ctx, from, to)
	if err != nil {
		return nil, false, err
	}

	if created {
		observability.RecordFriendRequestTransition(string(domain.FriendRequestPending))
		uc.invalidate(ctx, from, to)
		uc.logger.Info("friend request sent", "request_id", fr.ID, "from_user", from, "to_user", to)
	}
	return fr, created, nil
}

// RespondToRequest accepts or rejects a pending request addressed to the caller.
// Exactly one of any number of concurrent responses succeeds.
func (uc *FriendshipUseCase) RespondToRequest(ctx context.Context, callerID string, req *RespondRequest) (*domain.FriendRequest, error) {
	status, err := req.Response.Status()
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.RequestID); err != nil {
		return nil, domain.ErrFriendRequestNotFound
	}

	fr, err := uc.requestRepo.Resolve(ctx, req.RequestID, callerID, status)
	if err != nil {
		return nil, err
	}

	observability.RecordFriendRequestTransition(string(fr.Status))
	uc.invalidate(ctx, fr.FromUserID, fr.ToUserID)
	uc.logger.Info("friend request answered",
		"request_id", fr.ID, "status", fr.Status, "from_user", fr.FromUserID, "to_user", fr.ToUserID)
	return fr, nil
}

// ListPending returns the caller's incoming pending requests, oldest first.
func (uc *FriendshipUseCase) ListPending(ctx context.Context, callerID, userID string) ([]PendingRequest, error) {
	if callerID != userID {
		return nil, domain.ErrForbidden
	}
	if _, err := uc.profileRepo.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := uc.requestRepo.ListPendingForRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]string, 0, len(requests))
	for _, r := range requests {
		senderIDs = append(senderIDs, r.FromUserID)
	}
	senders, err := uc.profilesByID(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	out := make([]PendingRequest, 0, len(requests))
	for _, r := range requests {
		item := PendingRequest{
			ID:        r.ID,
			FromUser:  r.FromUserID,
			ToUser:    r.ToUserID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		}
		if p, ok := senders[r.FromUserID]; ok {
			item.FromUserName = p.FullName
			item.FromUserPhoto = p.PhotoURL
		}
		out = append(out, item)
	}
	return out, nil
}

// ListFriends returns the user's friends ordered by name.
func (uc *FriendshipUseCase) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	if _, err := uc.profileRepo.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := uc.friendRepo.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	profiles, err := uc.profilesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Friend, 0, len(ids))
	for _, id := range ids {
		f := Friend{ID: id}
		if p, ok := profiles[id]; ok {
			f.Name = p.FullName
			f.PhotoURL = p.PhotoURL
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (uc *FriendshipUseCase) profilesByID(ctx context.Context, ids []string) (map[string]*domain.Profile, error) {
	out := make(map[string]*domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	profiles, err := uc.profileRepo.GetByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func (uc *FriendshipUseCase) invalidate(ctx context.Context, userIDs ...string) {
	if err := uc.invalidator.Invalidate(ctx, userIDs...); err != nil {
		uc.logger.Warn("failed to invalidate cached matches", "users", userIDs, "error", err)
	}
}
