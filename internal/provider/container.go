package provider

import (
	"github.com/chestno/chestno-api/internal/authz"
	"github.com/chestno/chestno-api/internal/cache"
	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/geoip"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/queue"
	"github.com/chestno/chestno-api/internal/repository"
	"github.com/chestno/chestno-api/internal/service"
	"github.com/chestno/chestno-api/internal/ws"
)

// Container wires repositories and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	GeoIP       *geoip.Resolver
	LiveHub     *ws.Hub

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	SessionRepo      repository.SessionRepository
	OrgRepo          repository.OrganizationRepository
	MemberRepo       repository.MemberRepository
	ProductRepo      repository.ProductRepository
	QRCodeRepo       repository.QRCodeRepository
	QRVersionRepo    repository.QRVersionRepository
	QRCampaignRepo   repository.QRCampaignRepository
	QRABTestRepo     repository.QRABTestRepository
	ScanEventRepo    repository.ScanEventRepository
	ReviewRepo       repository.ReviewRepository
	FollowRepo       repository.FollowRepository
	RewardRepo       repository.RewardRepository
	WarrantyRepo     repository.WarrantyRepository
	SubscriptionRepo repository.SubscriptionRepository
	AnomalyRepo      repository.AnomalyRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	UserService         *service.UserService
	OrgService          *service.OrgService
	MemberService       *service.MemberService
	ProductService      *service.ProductService
	QRService           *service.QRService
	QRImageService      *service.QRImageService
	ResolverService     *service.ResolverService
	ScanService         *service.ScanService
	ReviewService       *service.ReviewService
	SocialService       *service.SocialService
	RewardService       *service.RewardService
	WarrantyService     *service.WarrantyService
	SubscriptionService *service.SubscriptionService
	AnomalyService      *service.AnomalyService
	TrustService        *service.TrustService
	EmailService        *service.EmailService
	TelegramService     *service.TelegramService
	NotificationService *service.NotificationService
	CaptchaService      *service.CaptchaService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		GeoIP:       geoip.Open(cfg.GeoIP),
		LiveHub:     ws.NewHub(),
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.SessionRepo = repository.NewSessionRepository(db)
	c.OrgRepo = repository.NewOrganizationRepository(db)
	c.MemberRepo = repository.NewMemberRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.QRCodeRepo = repository.NewQRCodeRepository(db)
	c.QRVersionRepo = repository.NewQRVersionRepository(db)
	c.QRCampaignRepo = repository.NewQRCampaignRepository(db)
	c.QRABTestRepo = repository.NewQRABTestRepository(db)
	c.ScanEventRepo = repository.NewScanEventRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.FollowRepo = repository.NewFollowRepository(db)
	c.RewardRepo = repository.NewRewardRepository(db)
	c.WarrantyRepo = repository.NewWarrantyRepository(db)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db)
	c.AnomalyRepo = repository.NewAnomalyRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.TelegramService = service.NewTelegramService(&c.Config.Telegram)
	c.NotificationService = service.NewNotificationService(c.UserRepo, c.OrgRepo, c.EmailService, c.TelegramService)
	c.CaptchaService = service.NewCaptchaService(&c.Config.Captcha)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.SessionRepo)
	c.UserService = service.NewUserService(c.UserRepo, c.SessionRepo)

	c.OrgService = service.NewOrgService(c.OrgRepo, c.MemberRepo, c.FollowRepo)
	c.MemberService = service.NewMemberService(c.MemberRepo, c.UserRepo)
	c.SubscriptionService = service.NewSubscriptionService(c.SubscriptionRepo, c.OrgRepo, c.ProductRepo, c.QRCodeRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.SubscriptionService)

	c.QRService = service.NewQRService(c.QRCodeRepo, c.QRVersionRepo, c.QRCampaignRepo, c.QRABTestRepo, c.ProductRepo, c.SubscriptionService)
	c.QRImageService = service.NewQRImageService(c.Config)
	c.ResolverService = service.NewResolverService(c.QRCodeRepo, c.QRVersionRepo, c.QRCampaignRepo, c.QRABTestRepo)

	c.RewardService = service.NewRewardService(c.Config, c.RewardRepo)
	c.ScanService = service.NewScanService(c.ScanEventRepo, c.QRCodeRepo, c.QRVersionRepo, c.QRCampaignRepo, c.QRABTestRepo, c.RewardService, c.GeoIP, c.LiveHub)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.ProductRepo, c.RewardService, c.QueueClient)
	c.SocialService = service.NewSocialService(c.FollowRepo, c.OrgRepo)
	c.WarrantyService = service.NewWarrantyService(c.WarrantyRepo, c.ProductRepo, c.QueueClient)
	c.AnomalyService = service.NewAnomalyService(c.Config, c.AnomalyRepo, c.ScanEventRepo, c.QRCodeRepo, c.QueueClient)
	c.TrustService = service.NewTrustService(c.OrgRepo, c.ReviewRepo, c.WarrantyRepo, c.AnomalyRepo)
}
