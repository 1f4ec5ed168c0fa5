package agent

import (
	"fmt"
	"sync"

	"github.com/mohitkumar/stepline/analytics"
	"github.com/mohitkumar/stepline/booking"
	"github.com/mohitkumar/stepline/config"
	"github.com/mohitkumar/stepline/engine"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/metadata"
	"github.com/mohitkumar/stepline/notify"
	"github.com/mohitkumar/stepline/persistence"
	"github.com/mohitkumar/stepline/persistence/inmem"
	rd "github.com/mohitkumar/stepline/persistence/redis"
	"github.com/mohitkumar/stepline/rest"
	"github.com/mohitkumar/stepline/service"
)

type Agent struct {
	Config          config.Config
	storage         persistence.Storage
	metadataService metadata.MetadataService
	executorService *service.WorkItemExecutionService
	notifier        *notify.WorkerNotifier
	httpServer      *rest.Server
	shutdown        bool
	shutdownLock    sync.Mutex
	wg              sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupAnalytics,
		a.setupStorage,
		a.setupServices,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupAnalytics() error {
	if a.Config.AuditLogFile == "" {
		return nil
	}
	return analytics.InitDataCollector(analytics.DataCollectorConfig{
		FileName:      a.Config.AuditLogFile,
		CollectorType: analytics.LOG_FILE_DATA_COLLECTOR,
	})
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.storage = rd.NewRedisStorage(rd.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
			Password:  a.Config.RedisConfig.Password,
			PoolSize:  a.Config.RedisConfig.PoolSize,
		})
	case config.STORAGE_TYPE_INMEM:
		a.storage = inmem.NewInmemStorage()
	default:
		return fmt.Errorf("unknown storage type %s", a.Config.StorageType)
	}
	return nil
}

func (a *Agent) setupServices() error {
	a.metadataService = metadata.NewMetadataService(a.storage.Metadata())
	a.notifier = notify.NewWorkerNotifier(notify.LogSink{}, &a.wg, a.Config.NotifierCapacity)
	a.notifier.Start()
	permissionGate := engine.NewDefaultPermissionGate(a.metadataService)
	permissionGate.SetBusinessHours(a.Config.BusinessHourStart, a.Config.BusinessHourEnd)
	bookingGate := booking.NewStorageBookingGate(a.storage.Bookings())
	scheduler := booking.NewLoggingSchedulerClient()
	eng := engine.New(a.metadataService, a.storage, permissionGate, bookingGate, scheduler, a.notifier)
	a.executorService = service.NewWorkItemExecutionService(a.metadataService, a.storage, eng)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.metadataService, a.executorService)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	go func() {
		err := a.httpServer.Start()
		if err != nil {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.httpServer.Stop,
		func() error {
			a.notifier.Stop()
			return nil
		},
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
