package engine

import (
	"github.com/mohitkumar/stepline/model"
)

type NotificationKind string

const NOTIFY_ITEM_MOVED NotificationKind = "ITEM_MOVED"
const NOTIFY_ITEM_BLOCKED NotificationKind = "ITEM_BLOCKED"
const NOTIFY_ITEM_TRANSFERRED NotificationKind = "ITEM_TRANSFERRED"
const NOTIFY_ITEM_REOPENED NotificationKind = "ITEM_REOPENED"

type PermissionGate interface {
	CanExecute(actor model.ActorContext, transition *model.Transition, item *model.WorkItem) bool
	CanMoveBackward(actor model.ActorContext, item *model.WorkItem) bool
	TransferAccess(actor model.ActorContext, item *model.WorkItem, src *model.Graph, dest *model.Graph) model.TransferAccess
}

type BookingGate interface {
	BookingsForStep(workItemId string, stepId string) ([]model.Booking, error)
}

// Notifier is fire-and-forget; implementations must never block the
// caller or surface delivery failures.
type Notifier interface {
	Notify(kind NotificationKind, item *model.WorkItem, actorId string)
}

// SchedulerClient is the mirror into the external resource scheduling
// subsystem. It exposes no step remapping, only descriptive metadata.
type SchedulerClient interface {
	UpdateBookingMetadata(mirrorRef string, metadata map[string]string) error
}
