package provider

import (
	"github.com/spiral-platform/spiral-api/internal/authz"
	"github.com/spiral-platform/spiral-api/internal/cache"
	"github.com/spiral-platform/spiral-api/internal/config"
	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/queue"
	"github.com/spiral-platform/spiral-api/internal/repository"
	"github.com/spiral-platform/spiral-api/internal/service"
)

// Container holds the wired dependencies shared by the API and the worker.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo   repository.AdminRepository
	UserRepo    repository.UserRepository
	OrderRepo   repository.OrderRepository
	ReturnRepo  repository.ReturnRepository
	RefundRepo  repository.RefundRepository
	LoyaltyRepo repository.LoyaltyRepository
	PerkRepo    repository.PerkRepository
	TripRepo    repository.TripRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	EmailService    *service.EmailService
	ReturnService   *service.ReturnService
	RefundService   *service.RefundService
	LoyaltyService  *service.LoyaltyService
	PerkService     *service.PerkService
	TripService     *service.TripService
}

// NewContainer wires repositories and services from the loaded config.
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
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ReturnRepo = repository.NewReturnRepository(db)
	c.RefundRepo = repository.NewRefundRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
	c.PerkRepo = repository.NewPerkRepository(db)
	c.TripRepo = repository.NewTripRepository(db)
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
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.LoyaltyService = service.NewLoyaltyService(c.LoyaltyRepo, c.Config.Loyalty.PointsPerDollar)
	c.ReturnService = service.NewReturnService(c.ReturnRepo, c.OrderRepo, c.Config.Returns.WindowDays, c.Config.Returns.AutoApproveThreshold)
	c.RefundService = service.NewRefundService(c.RefundRepo, c.ReturnRepo, c.LoyaltyService, c.QueueClient)
	c.PerkService = service.NewPerkService(c.PerkRepo)
	c.TripService = service.NewTripService(c.TripRepo, c.LoyaltyService, c.QueueClient, c.Config.Trips.AcceptBonusPoints, c.Config.Trips.InviteesPerCode)
}
