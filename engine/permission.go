package engine

import (
	"encoding/json"
	"time"

	"github.com/dop251/goja"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/metadata"
	"github.com/mohitkumar/stepline/model"
	"go.uber.org/zap"
)

const DEFAULT_BUSINESS_HOUR_START int = 8
const DEFAULT_BUSINESS_HOUR_END int = 18

// DefaultPermissionGate evaluates transition permission policies against
// an ActorContext. Evaluation is pure: it reads, never mutates, and is
// re-run inside the same operation that applies the move.
type DefaultPermissionGate struct {
	metadata          metadata.MetadataService
	businessHourStart int
	businessHourEnd   int
	now               func() time.Time
}

var _ PermissionGate = new(DefaultPermissionGate)

func NewDefaultPermissionGate(metadataService metadata.MetadataService) *DefaultPermissionGate {
	return &DefaultPermissionGate{
		metadata:          metadataService,
		businessHourStart: DEFAULT_BUSINESS_HOUR_START,
		businessHourEnd:   DEFAULT_BUSINESS_HOUR_END,
		now:               time.Now,
	}
}

func (g *DefaultPermissionGate) SetBusinessHours(start int, end int) {
	if start >= 0 && end > start && end <= 24 {
		g.businessHourStart = start
		g.businessHourEnd = end
	}
}

func (g *DefaultPermissionGate) CanExecute(actor model.ActorContext, transition *model.Transition, item *model.WorkItem) bool {
	switch transition.PermissionLevel {
	case model.PERMISSION_ANY:
		return true
	case model.PERMISSION_ASSIGNEE:
		return item.AssigneeId != "" && actor.UserId == item.AssigneeId
	case model.PERMISSION_TEAM:
		graph, err := g.metadata.GetGraph(item.GraphId)
		if err != nil {
			return false
		}
		step := graph.StepById(item.CurrentStepId)
		if step == nil || step.AssignedTeamId == "" {
			return false
		}
		return g.metadata.TeamContains(step.AssignedTeamId, actor.UserId)
	case model.PERMISSION_ADMIN:
		return actor.Admin || actor.Staff
	case model.PERMISSION_CREATOR:
		return actor.UserId == item.CreatorId
	case model.PERMISSION_CUSTOM:
		return g.evaluateCustom(actor, transition.Custom, item)
	}
	return false
}

func (g *DefaultPermissionGate) CanMoveBackward(actor model.ActorContext, item *model.WorkItem) bool {
	return actor.Admin || actor.Staff || actor.UserId == item.CreatorId
}

func (g *DefaultPermissionGate) TransferAccess(actor model.ActorContext, item *model.WorkItem, src *model.Graph, dest *model.Graph) model.TransferAccess {
	return model.TransferAccess{
		HasPermission:        actor.Admin || actor.CanTransfer,
		HasCurrentAccess:     g.hasGraphAccess(actor, src),
		CanAccessDestination: g.hasGraphAccess(actor, dest),
	}
}

func (g *DefaultPermissionGate) hasGraphAccess(actor model.ActorContext, graph *model.Graph) bool {
	if actor.OrgId != graph.OrgId {
		return false
	}
	if actor.Admin {
		return true
	}
	if graph.OwnerTeamId != "" && g.metadata.TeamContains(graph.OwnerTeamId, actor.UserId) {
		return true
	}
	// never append onto the graph's own slices, cached copies share them
	teamIds := make([]string, 0, len(graph.ViewerTeamIds)+len(graph.EditorTeamIds))
	teamIds = append(teamIds, graph.ViewerTeamIds...)
	teamIds = append(teamIds, graph.EditorTeamIds...)
	for _, teamId := range teamIds {
		if g.metadata.TeamContains(teamId, actor.UserId) {
			return true
		}
	}
	return false
}

func (g *DefaultPermissionGate) evaluateCustom(actor model.ActorContext, custom *model.CustomCondition, item *model.WorkItem) bool {
	if custom == nil {
		return false
	}
	if custom.MinPriority > 0 && item.Priority < custom.MinPriority {
		return false
	}
	if custom.BusinessHoursOnly && !g.withinBusinessHours(g.now()) {
		return false
	}
	if custom.Expression != "" {
		return g.evaluateExpression(custom.Expression, actor, item)
	}
	return true
}

func (g *DefaultPermissionGate) withinBusinessHours(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return t.Hour() >= g.businessHourStart && t.Hour() < g.businessHourEnd
}

// evaluateExpression runs a javascript predicate with $actor and $item
// bound to json views of the actor context and the work item.
func (g *DefaultPermissionGate) evaluateExpression(expression string, actor model.ActorContext, item *model.WorkItem) bool {
	actorData, _ := json.Marshal(actor)
	itemData, _ := json.Marshal(item)
	script := "var $actor = " + string(actorData) + ";\nvar $item = " + string(itemData) + ";\n" + expression
	vm := goja.New()
	val, err := vm.RunString(script)
	if err != nil {
		logger.Error("error evaluating condition expression", zap.String("itemId", item.Id), zap.Error(err))
		return false
	}
	return val.ToBoolean()
}
