package notify

import (
	"fmt"
	"sync"

	"github.com/mohitkumar/stepline/engine"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/util"
	"go.uber.org/zap"
)

var templates = map[engine.NotificationKind]string{
	engine.NOTIFY_ITEM_MOVED:       "work item {$.title} moved forward",
	engine.NOTIFY_ITEM_BLOCKED:     "work item {$.title} is blocked",
	engine.NOTIFY_ITEM_TRANSFERRED: "work item {$.title} was transferred to another workflow",
	engine.NOTIFY_ITEM_REOPENED:    "work item {$.title} was moved back",
}

type event struct {
	kind       engine.NotificationKind
	itemId     string
	title      string
	payload    map[string]any
	actorId    string
	recipients []string
}

type Sink interface {
	Send(recipient string, message string) error
}

// WorkerNotifier dispatches notifications on a background worker so the
// engine never waits on delivery.
type WorkerNotifier struct {
	worker *util.Worker
	sink   Sink
}

var _ engine.Notifier = new(WorkerNotifier)

func NewWorkerNotifier(sink Sink, wg *sync.WaitGroup, capacity int) *WorkerNotifier {
	n := &WorkerNotifier{sink: sink}
	n.worker = util.NewWorker("notifier", wg, n.dispatch, capacity)
	return n
}

func (n *WorkerNotifier) Start() {
	n.worker.Start()
}

func (n *WorkerNotifier) Stop() {
	n.worker.Stop()
}

func (n *WorkerNotifier) Notify(kind engine.NotificationKind, item *model.WorkItem, actorId string) {
	recipients := make([]string, 0, 2)
	if item.AssigneeId != "" && item.AssigneeId != actorId {
		recipients = append(recipients, item.AssigneeId)
	}
	if item.CreatorId != actorId && item.CreatorId != item.AssigneeId {
		recipients = append(recipients, item.CreatorId)
	}
	if len(recipients) == 0 {
		return
	}
	ev := event{
		kind:       kind,
		itemId:     item.Id,
		title:      item.Title,
		payload:    model.CopyPayload(item.Payload),
		actorId:    actorId,
		recipients: recipients,
	}
	select {
	case n.worker.Sender() <- ev:
	default:
		logger.Error("notification channel full, dropping event", zap.String("itemId", item.Id), zap.String("kind", string(kind)))
	}
}

func (n *WorkerNotifier) dispatch(action util.Action) error {
	ev, ok := action.(event)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", action)
	}
	template, ok := templates[ev.kind]
	if !ok {
		template = fmt.Sprintf("work item %s changed", ev.itemId)
	}
	data := ev.payload
	if data == nil {
		data = map[string]any{}
	}
	data["title"] = ev.title
	message := util.ResolveTemplate(template, data)
	for _, recipient := range ev.recipients {
		if err := n.sink.Send(recipient, message); err != nil {
			logger.Error("error sending notification", zap.String("recipient", recipient), zap.Error(err))
		}
	}
	return nil
}

// LogSink writes notifications to the application log; the real email
// delivery subsystem plugs in behind the same interface.
type LogSink struct{}

func (s LogSink) Send(recipient string, message string) error {
	logger.Info("notification", zap.String("recipient", recipient), zap.String("message", message))
	return nil
}
