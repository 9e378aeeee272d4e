package provider

import (
	"github.com/rollstock-erp/internal/cache"
	"github.com/rollstock-erp/internal/config"
	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/models"
	"github.com/rollstock-erp/internal/queue"
	"github.com/rollstock-erp/internal/repository"
	"github.com/rollstock-erp/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OperatorRepo    repository.OperatorRepository
	CustomerRepo    repository.CustomerRepository
	OrderRepo       repository.OrderRepository
	PrimaryUnitRepo repository.PrimaryUnitRepository
	DerivedUnitRepo repository.DerivedUnitRepository
	ScanRecordRepo  repository.ScanRecordRepository
	ShipmentRepo    repository.ShipmentRepository

	// Services
	AuthService      *service.AuthService
	CustomerService  *service.CustomerService
	OrderService     *service.OrderService
	InventoryService *service.InventoryService
	ProgressService  *service.ProgressService
	ScanService      *service.ScanService
	ShipmentService  *service.ShipmentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OperatorRepo = repository.NewOperatorRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PrimaryUnitRepo = repository.NewPrimaryUnitRepository(db)
	c.DerivedUnitRepo = repository.NewDerivedUnitRepository(db)
	c.ScanRecordRepo = repository.NewScanRecordRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
}

func (c *Container) initServices() {
	matcher := service.NewSpecMatcher(c.Config.Scan.ToleranceAbs)

	c.AuthService = service.NewAuthService(c.Config, c.OperatorRepo)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CustomerRepo)
	c.InventoryService = service.NewInventoryService(c.PrimaryUnitRepo, c.DerivedUnitRepo, c.ScanRecordRepo)
	c.ProgressService = service.NewProgressService(c.OrderRepo, c.ShipmentRepo, c.Config.Scan.ProgressCacheTTLSecond)
	c.ScanService = service.NewScanService(
		c.OrderRepo,
		c.ShipmentRepo,
		c.ScanRecordRepo,
		c.PrimaryUnitRepo,
		c.DerivedUnitRepo,
		matcher,
		c.ProgressService,
	)
	c.ShipmentService = service.NewShipmentService(
		c.OrderRepo,
		c.ShipmentRepo,
		c.ScanService,
		c.ProgressService,
		c.QueueClient,
	)
}
