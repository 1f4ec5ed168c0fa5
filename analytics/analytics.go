package analytics

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE_DATA_COLLECTOR"

type MoveDataCollector interface {
	RecordMoveSuccess(itemId string, graphId string, fromStep string, toStep string, kind string)
	RecordMoveBlocked(itemId string, outcome string, reason string)
}

var moveCollector MoveDataCollector

func InitDataCollector(config DataCollectorConfig) error {
	switch config.CollectorType {
	case LOG_FILE_DATA_COLLECTOR:
		c, err := NewLogFileDataCollector(config.FileName)
		if err != nil {
			return err
		}
		moveCollector = c
	}
	return nil
}

func RecordMoveSuccess(itemId string, graphId string, fromStep string, toStep string, kind string) {
	if moveCollector == nil {
		return
	}
	moveCollector.RecordMoveSuccess(itemId, graphId, fromStep, toStep, kind)
}

func RecordMoveBlocked(itemId string, outcome string, reason string) {
	if moveCollector == nil {
		return
	}
	moveCollector.RecordMoveBlocked(itemId, outcome, reason)
}
