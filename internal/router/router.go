package router

import (
	"net/http"

	"github.com/chestno/chestno-api/internal/cache"
	"github.com/chestno/chestno-api/internal/config"
	adminhandler "github.com/chestno/chestno-api/internal/http/handlers/admin"
	orghandler "github.com/chestno/chestno-api/internal/http/handlers/org"
	publichandler "github.com/chestno/chestno-api/internal/http/handlers/public"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SetupRouter wires middlewares and routes.
func SetupRouter(cfg *config.Config, container *provider.Container) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	public := publichandler.New(container)
	org := orghandler.New(container)
	admin := adminhandler.New(container)

	var redisClient *redis.Client
	if cache.Enabled() {
		redisClient = cache.Client()
	}
	loginLimit := cfg.Security.LoginRateLimit
	userLoginLimiter := RateLimitMiddleware(redisClient, RateLimitRule{
		Prefix:        "rl:user_login",
		WindowSeconds: loginLimit.WindowSeconds,
		MaxRequests:   loginLimit.MaxAttempts,
		MessageKey:    "error.login_rate_limited",
	}, KeyByIPAndJSONField("email"))
	adminLoginLimiter := RateLimitMiddleware(redisClient, RateLimitRule{
		Prefix:        "rl:admin_login",
		WindowSeconds: loginLimit.WindowSeconds,
		MaxRequests:   loginLimit.MaxAttempts,
		MessageKey:    "error.login_rate_limited",
	}, KeyByIPAndJSONField("username"))
	registerLimiter := RateLimitMiddleware(redisClient, RateLimitRule{
		Prefix:        "rl:register",
		WindowSeconds: loginLimit.WindowSeconds,
		MaxRequests:   loginLimit.MaxAttempts,
		MessageKey:    "error.rate_limited",
	}, KeyByIP)

	sessionAuth := SessionAuthMiddleware(cfg.Session, container.UserAuthService)
	optionalSession := OptionalSessionMiddleware(cfg.Session, container.UserAuthService)
	adminJWT := JWTAuthMiddleware(cfg.AdminJWT.SecretKey, container.AdminRepo)
	adminRBAC := AdminRBACMiddleware(container.AuthzService)

	// The scan redirect is the hot path: a printed QR code lands here.
	r.GET("/q/:slug", optionalSession, public.ResolveScan)

	apiV1 := r.Group("/api/v1")
	{
		pub := apiV1.Group("/public")
		{
			pub.GET("/orgs", public.GetOrgs)
			pub.GET("/orgs/:slug", public.GetOrgBySlug)
			pub.GET("/orgs/:slug/products", public.GetOrgProducts)
			pub.GET("/products/:slug", public.GetProductBySlug)
			pub.GET("/products/:slug/reviews", public.GetProductReviews)
			pub.GET("/plans", public.GetPlans)
			pub.GET("/qr/:slug/resolve", public.ResolveInfo)
			pub.GET("/qr/:slug/image", public.GetQRImage)
			pub.GET("/captcha", public.GetImageCaptcha)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", registerLimiter, public.UserRegister)
			auth.POST("/login", userLoginLimiter, public.UserLogin)
			auth.POST("/logout", sessionAuth, public.UserLogout)
		}

		me := apiV1.Group("")
		me.Use(sessionAuth)
		{
			me.GET("/me", public.GetCurrentUser)
			me.PATCH("/me", public.UpdateUserProfile)
			me.GET("/me/orgs", public.GetMyOrgs)
			me.GET("/me/rewards", public.GetRewardBalance)
			me.GET("/me/rewards/history", public.GetRewardHistory)
			me.GET("/me/follows", public.GetMyFollows)
			me.POST("/orgs", public.CreateOrg)
			me.POST("/orgs/:id/follow", public.FollowOrg)
			me.DELETE("/orgs/:id/follow", public.UnfollowOrg)
			me.POST("/reviews", public.SubmitReview)
			me.GET("/me/reviews", public.GetMyReviews)
			me.POST("/claims", public.FileWarrantyClaim)
			me.GET("/me/claims", public.GetMyWarrantyClaims)
			me.GET("/me/claims/:id", public.GetMyWarrantyClaim)
		}

		console := apiV1.Group("/org/:id")
		console.Use(sessionAuth)
		{
			console.GET("", org.GetOrg)
			console.PATCH("", org.UpdateOrg)
			console.GET("/members", org.GetMembers)
			console.POST("/members", org.InviteMember)
			console.PATCH("/members/:user_id", org.ChangeMemberRole)
			console.DELETE("/members/:user_id", org.RemoveMember)
			console.GET("/subscription", org.GetSubscription)
			console.GET("/subscription/history", org.GetSubscriptionHistory)

			console.GET("/products", org.GetProducts)
			console.POST("/products", org.CreateProduct)
			console.GET("/products/:product_id", org.GetProduct)
			console.PATCH("/products/:product_id", org.UpdateProduct)
			console.DELETE("/products/:product_id", org.DeleteProduct)
			console.GET("/products/:product_id/journey", org.GetJourney)
			console.POST("/products/:product_id/journey", org.AppendJourneyStep)

			console.GET("/qr", org.GetQRCodes)
			console.POST("/qr", org.CreateQRCode)
			console.GET("/qr/:qr_id", org.GetQRCode)
			console.PATCH("/qr/:qr_id", org.UpdateQRCode)
			console.DELETE("/qr/:qr_id", org.DeleteQRCode)
			console.GET("/qr/:qr_id/versions", org.GetQRVersions)
			console.POST("/qr/:qr_id/versions", org.AddQRVersion)
			console.POST("/qr/:qr_id/versions/:version_id/rollback", org.RollbackQRVersion)
			console.GET("/qr/:qr_id/campaigns", org.GetCampaigns)
			console.POST("/qr/:qr_id/campaigns", org.CreateCampaign)
			console.PATCH("/qr/:qr_id/campaigns/:campaign_id", org.SetCampaignStatus)
			console.DELETE("/qr/:qr_id/campaigns/:campaign_id", org.DeleteCampaign)
			console.GET("/qr/:qr_id/abtests", org.GetABTests)
			console.POST("/qr/:qr_id/abtests", org.CreateABTest)
			console.PUT("/qr/:qr_id/abtests/:test_id/variants", org.ReplaceABVariants)
			console.POST("/qr/:qr_id/abtests/:test_id/start", org.StartABTest)
			console.POST("/qr/:qr_id/abtests/:test_id/conclude", org.ConcludeABTest)
			console.DELETE("/qr/:qr_id/abtests/:test_id", org.DeleteABTest)

			console.GET("/scans", org.GetScanEvents)
			console.GET("/scans/stats", org.GetScanStats)
			console.GET("/reviews", org.GetReviews)
			console.POST("/reviews/:review_id/reply", org.ReplyToReview)
			console.GET("/claims", org.GetWarrantyClaims)
			console.POST("/claims/:claim_id/respond", org.RespondToClaim)
			console.GET("/anomalies", org.GetAnomalies)
			console.POST("/anomalies/:alert_id/ack", org.AcknowledgeAnomaly)
			console.GET("/live", org.LiveFeed)
		}
	}

	adminAPI := r.Group("/api/admin")
	{
		adminAPI.POST("/login", adminLoginLimiter, admin.Login)

		secured := adminAPI.Group("")
		secured.Use(adminJWT, adminRBAC)
		{
			secured.GET("/profile", admin.GetProfile)
			secured.POST("/change-password", admin.ChangePassword)

			secured.GET("/users", admin.GetUsers)
			secured.GET("/users/:id", admin.GetUser)
			secured.PATCH("/users/:id/status", admin.SetUserStatus)
			secured.POST("/rewards/adjust", admin.AdjustRewards)

			secured.GET("/orgs", admin.GetOrgs)
			secured.GET("/orgs/:id", admin.GetOrg)
			secured.PATCH("/orgs/:id/verify", admin.SetOrgVerified)
			secured.DELETE("/orgs/:id", admin.DeleteOrg)
			secured.POST("/orgs/:id/subscription", admin.AssignSubscription)
			secured.POST("/orgs/:id/trust/recompute", admin.RecomputeTrust)

			secured.GET("/plans", admin.GetPlans)
			secured.POST("/plans", admin.CreatePlan)
			secured.PATCH("/plans/:id", admin.UpdatePlan)

			secured.GET("/anomalies", admin.GetAnomalies)
			secured.POST("/anomalies/:id/ack", admin.AcknowledgeAnomaly)

			secured.GET("/admins", admin.GetAdmins)
			secured.POST("/admins", admin.CreateAdmin)
			secured.PUT("/admins/:id/roles", admin.SetAdminRoles)
			secured.DELETE("/admins/:id", admin.DeleteAdmin)
			secured.GET("/roles", admin.GetRoles)
			secured.POST("/roles", admin.CreateRole)
			secured.DELETE("/roles/:role", admin.DeleteRole)
			secured.GET("/roles/:role/policies", admin.GetRolePolicies)
			secured.POST("/roles/:role/policies", admin.GrantRolePolicy)
			secured.DELETE("/roles/:role/policies", admin.RevokeRolePolicy)
		}
	}

	moderation := r.Group("/api/moderation/v2")
	moderation.Use(adminJWT, adminRBAC)
	{
		moderation.GET("/queue", admin.GetModerationQueue)
		moderation.POST("/reviews/:id/approve", admin.ApproveReview)
		moderation.POST("/reviews/:id/reject", admin.RejectReview)
		moderation.DELETE("/reviews/:id", admin.DeleteReview)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status_code": response.CodeNotFound,
			"msg":         "route not found",
		})
	})

	return r
}
