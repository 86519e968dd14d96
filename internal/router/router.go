package router

import (
	"fmt"
	"strings"

	"github.com/spiral-platform/spiral-api/internal/cache"
	"github.com/spiral-platform/spiral-api/internal/config"
	adminhandlers "github.com/spiral-platform/spiral-api/internal/http/handlers/admin"
	publichandlers "github.com/spiral-platform/spiral-api/internal/http/handlers/public"
	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all API routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "spiral"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// shopper authentication
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// guest surface: trip pages are reachable by invite link without
		// an account, perk eligibility is evaluated client-side in carts
		apiV1.GET("/trips/:trip_code", publicHandler.GetTrip)
		apiV1.POST("/trips/:trip_code/respond", publicHandler.RespondToTrip)
		apiV1.POST("/perks/check-eligibility", publicHandler.CheckPerkEligibility)

		// shopper surface
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetMyProfile)
			user.GET("/me/loyalty", publicHandler.GetMyLoyalty)
			user.GET("/me/loyalty/transactions", publicHandler.GetMyLoyaltyTransactions)

			user.POST("/returns", publicHandler.CreateReturn)
			user.GET("/returns", publicHandler.ListMyReturns)
			user.GET("/returns/eligible-orders", publicHandler.ListEligibleOrders)
			user.GET("/returns/:id", publicHandler.GetMyReturn)
			user.POST("/returns/:id/refund", publicHandler.RequestRefund)
			user.GET("/returns/:id/refund", publicHandler.GetMyRefund)

			user.POST("/perks/apply", publicHandler.ApplyPerk)

			user.POST("/trips", publicHandler.CreateTrip)
			user.GET("/trips", publicHandler.ListMyTrips)
		}

		// back office
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/profile", adminHandler.GetAdminProfile)

				authorized.GET("/returns", adminHandler.GetAdminReturns)
				authorized.GET("/returns/:id", adminHandler.GetAdminReturn)
				authorized.POST("/returns/:id/decision", adminHandler.DecideReturn)

				authorized.GET("/refunds", adminHandler.GetAdminRefunds)
				authorized.GET("/refunds/:id", adminHandler.GetAdminRefund)

				authorized.GET("/perks", adminHandler.GetAdminPerks)
				authorized.POST("/perks", adminHandler.CreateAdminPerk)
				authorized.GET("/perks/:id", adminHandler.GetAdminPerk)
				authorized.PUT("/perks/:id", adminHandler.UpdateAdminPerk)
				authorized.PATCH("/perks/:id/active", adminHandler.SetAdminPerkActive)
				authorized.DELETE("/perks/:id", adminHandler.DeleteAdminPerk)

				authorized.GET("/loyalty/accounts", adminHandler.GetAdminLoyaltyAccount)
				authorized.GET("/loyalty/transactions", adminHandler.GetAdminLoyaltyTransactions)
				authorized.POST("/loyalty/adjust", adminHandler.AdjustLoyalty)

				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
			}
		}
	}

	// health probe for load balancers
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
