package booking

import (
	"github.com/mohitkumar/stepline/engine"
	"github.com/mohitkumar/stepline/logger"
	"go.uber.org/zap"
)

// LoggingSchedulerClient stands in for the external scheduling subsystem
// when no mirror endpoint is configured.
type LoggingSchedulerClient struct{}

var _ engine.SchedulerClient = new(LoggingSchedulerClient)

func NewLoggingSchedulerClient() *LoggingSchedulerClient {
	return &LoggingSchedulerClient{}
}

func (c *LoggingSchedulerClient) UpdateBookingMetadata(mirrorRef string, metadata map[string]string) error {
	logger.Info("scheduler mirror metadata update", zap.String("mirrorRef", mirrorRef), zap.Any("metadata", metadata))
	return nil
}
