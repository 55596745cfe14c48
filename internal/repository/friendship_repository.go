package repository

import (
	"context"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

type FriendRequestRepository interface {
	// CreatePending inserts a pending request unless the pair already has one
	// in either direction, in which case the existing request is returned with
	// created=false. Fails with domain.ErrAlreadyFriends for existing friends.
	CreatePending(ctx context.Context, fromUserID, toUserID string) (req *domain.FriendRequest, created bool, err error)
	GetByID(ctx context.Context, id string) (*domain.FriendRequest, error)
	// Resolve moves a pending request addressed to responderID into status.
	// Accepting inserts the friendship in the same atomic step.
	Resolve(ctx context.Context, id, responderID string, status domain.FriendRequestStatus) (*domain.FriendRequest, error)
	// ListPendingForRecipient returns pending requests sent to userID, oldest first.
	ListPendingForRecipient(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	// ListPendingCounterparts returns users with a pending request to or from userID.
	ListPendingCounterparts(ctx context.Context, userID string) ([]string, error)
}

type FriendshipRepository interface {
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
}
