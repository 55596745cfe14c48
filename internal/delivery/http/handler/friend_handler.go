package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/usecase/friendship"
)

type FriendHandler struct {
	friendshipUseCase *friendship.FriendshipUseCase
}

func NewFriendHandler(friendshipUseCase *friendship.FriendshipUseCase) *FriendHandler {
	return &FriendHandler{
		friendshipUseCase: friendshipUseCase,
	}
}

// SendResponse represents a friend request and whether this call created it
type SendResponse struct {
	*domain.FriendRequest
	Created bool `json:"created"`
}

// PendingResponse represents the caller's incoming requests
type PendingResponse struct {
	Requests []friendship.PendingRequest `json:"requests"`
	Count    int                         `json:"count"`
}

// FriendsResponse represents a user's friends
type FriendsResponse struct {
	Friends []friendship.Friend `json:"friends"`
	Count   int                 `json:"count"`
}

// SendRequest handles POST /friend-requests/send
// @Summary Send friend request
// @Description Idempotent: an existing pending request for the pair is returned with created=false
// @Tags friends
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body friendship.SendRequest true "Sender and recipient"
// @Success 200 {object} SendResponse
// @Success 201 {object} SendResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /friend-requests/send [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req friendship.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fr, created, err := h.friendshipUseCase.SendFriendRequest(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, SendResponse{FriendRequest: fr, Created: created})
}

// RespondToRequest handles POST /friend-requests/respond
// @Summary Respond to friend request
// @Description Accept or reject a pending request addressed to the caller
// @Tags friends
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body friendship.RespondRequest true "Decision"
// @Success 200 {object} domain.FriendRequest
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /friend-requests/respond [post]
func (h *FriendHandler) RespondToRequest(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req friendship.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fr, err := h.friendshipUseCase.RespondToRequest(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, fr)
}

// ListPending handles GET /friend-requests/pending/:user_id
// @Summary List pending requests
// @Description Incoming pending requests, oldest first
// @Tags friends
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} PendingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /friend-requests/pending/{user_id} [get]
func (h *FriendHandler) ListPending(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	requests, err := h.friendshipUseCase.ListPending(c.Request.Context(), caller, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PendingResponse{Requests: requests, Count: len(requests)})
}

// ListFriends handles GET /friends/:user_id
// @Summary List friends
// @Tags friends
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} FriendsResponse
// @Failure 404 {object} ErrorResponse
// @Router /friends/{user_id} [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	friends, err := h.friendshipUseCase.ListFriends(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, FriendsResponse{Friends: friends, Count: len(friends)})
}
