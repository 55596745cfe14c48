package domain

import "time"

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// IsTerminal reports whether no further transitions are allowed.
func (s FriendRequestStatus) IsTerminal() bool {
	return s == FriendRequestAccepted || s == FriendRequestRejected
}

// Decision is the recipient's answer to a pending request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Status maps a decision onto the terminal status it produces.
func (d Decision) Status() (FriendRequestStatus, error) {
	switch d {
	case DecisionAccept:
		return FriendRequestAccepted, nil
	case DecisionReject:
		return FriendRequestRejected, nil
	}
	return "", ErrInvalidDecision
}

type FriendRequest struct {
	ID          string              `json:"id"`
	FromUserID  string              `json:"from_user"`
	ToUserID    string              `json:"to_user"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	RespondedAt *time.Time          `json:"responded_at,omitempty"`
}

// PairKey identifies the unordered pair of users.
func (r *FriendRequest) PairKey() string {
	return PairKey(r.FromUserID, r.ToUserID)
}

// Counterpart returns the other user in the request.
func (r *FriendRequest) Counterpart(userID string) (string, bool) {
	if r.FromUserID == userID {
		return r.ToUserID, true
	}
	if r.ToUserID == userID {
		return r.FromUserID, true
	}
	return "", false
}

// Friendship is a symmetric edge, stored with UserLow < UserHigh.
type Friendship struct {
	UserLow   string    `json:"user_low"`
	UserHigh  string    `json:"user_high"`
	RequestID string    `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderPair returns the two ids sorted ascending.
func OrderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// PairKey builds the canonical key for an unordered pair.
func PairKey(a, b string) string {
	low, high := OrderPair(a, b)
	return low + ":" + high
}
