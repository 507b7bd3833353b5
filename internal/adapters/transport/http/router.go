package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	socialsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/social/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Auth     appsvc.Service
	Accounts socialsvc.AccountService
	Articles socialsvc.ArticleService
	Comments socialsvc.CommentService
	Logger   *zap.Logger

	// Ready reports whether the backing stores are reachable. Nil means
	// always ready.
	Ready func(ctx context.Context) error

	// Metrics may be nil; /metrics is served from Gatherer when set.
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer

	RateLimit        int
	RateLimitBurst   int
	AllowedOrigins   []string
	AllowCredentials bool
	AvatarsEnabled   bool
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		router.Use(d.Metrics.Handler())
	}
	if d.RateLimit > 0 {
		router.Use(middleware.NewHTTPRateLimitPerIP(d.RateLimit, d.RateLimitBurst, 10_000, time.Hour))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: d.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: d.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	gate := middleware.RequireAuth(d.Auth)
	auth := &authHandler{svc: d.Auth, log: d.Logger}
	users := &userHandler{svc: d.Accounts}
	articles := &articleHandler{svc: d.Articles}
	comments := &commentHandler{svc: d.Comments}

	api := router.Group("/api")

	u := api.Group("/user")
	u.POST("/signup", auth.signup)
	u.POST("/login", auth.login)
	u.POST("/logout", auth.logout)
	u.POST("/refresh", auth.refresh)
	u.GET("/searchUser", users.search)
	u.GET("/u/:username", users.byUsername)
	u.GET("/followings/:username", users.followings)
	u.GET("/followers/:username", users.followers)
	u.GET("/:id", users.byID)
	u.PUT("/:id", gate, users.update)
	u.PUT("/:id/follow", gate, users.follow)
	u.PUT("/:id/unfollow", gate, users.unfollow)
	if d.AvatarsEnabled {
		u.POST("/:id/avatar", gate, users.avatar)
	}

	a := api.Group("/article")
	a.POST("", gate, articles.create)
	a.GET("/timeline", gate, articles.timeline)
	a.GET("/u/:username", articles.byUsername)
	a.GET("/:id", articles.get)
	a.PUT("/:id", gate, articles.update)
	a.DELETE("/:id", gate, articles.remove)
	a.GET("/:id/like", gate, articles.like)

	cm := api.Group("/comment")
	cm.POST("", gate, comments.create)
	cm.GET("/:id", comments.byArticle)

	router.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "time": time.Now().Unix()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}
