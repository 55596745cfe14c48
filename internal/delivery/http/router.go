package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/gdugdh24/recapp-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/recapp-backend/internal/delivery/http/middleware"
)

type Router struct {
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	matchHandler   *handler.MatchHandler
	friendHandler  *handler.FriendHandler
	authMiddleware *middleware.AuthMiddleware
	logger         *slog.Logger
	serviceName    string
	devRoutes      bool
}

type RouterOptions struct {
	ServiceName string
	// DevRoutes mounts POST /auth/dev-token.
	DevRoutes bool
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	matchHandler *handler.MatchHandler,
	friendHandler *handler.FriendHandler,
	authMiddleware *middleware.AuthMiddleware,
	logger *slog.Logger,
	opts RouterOptions,
) *Router {
	return &Router{
		authHandler:    authHandler,
		profileHandler: profileHandler,
		matchHandler:   matchHandler,
		friendHandler:  friendHandler,
		authMiddleware: authMiddleware,
		logger:         logger,
		serviceName:    opts.ServiceName,
		devRoutes:      opts.DevRoutes,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if r.serviceName != "" {
		router.Use(otelgin.Middleware(r.serviceName))
	}
	router.Use(middleware.RequestID(), middleware.AccessLog(r.logger))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.devRoutes && r.authHandler != nil {
		router.POST("/auth/dev-token", r.authHandler.DevToken)
	}

	protected := router.Group("")
	protected.Use(r.authMiddleware.RequireAuth())
	{
		users := protected.Group("/users")
		{
			users.POST("/:user_id", r.profileHandler.CreateProfile)
			users.GET("/:user_id", r.profileHandler.GetProfile)
			users.PUT("/:user_id/survey", r.profileHandler.CompleteSurvey)
			users.PATCH("/:user_id/sports", r.profileHandler.UpdateSports)
		}

		matches := protected.Group("/matches")
		{
			matches.GET("/:user_id", r.matchHandler.GetMatches)
			matches.GET("/:user_id/explain/:other_user_id", r.matchHandler.ExplainMatch)
		}

		requests := protected.Group("/friend-requests")
		{
			requests.POST("/send", r.friendHandler.SendRequest)
			requests.POST("/respond", r.friendHandler.RespondToRequest)
			requests.GET("/pending/:user_id", r.friendHandler.ListPending)
		}

		protected.GET("/friends/:user_id", r.friendHandler.ListFriends)
	}

	return router, nil
}
