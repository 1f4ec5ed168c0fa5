package metadata

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	c "github.com/patrickmn/go-cache"
)

type MetadataService interface {
	SaveGraph(g model.Graph) (*model.Graph, error)
	GetGraph(id string) (*model.Graph, error)
	DeleteGraph(id string) error
	ListGraphs(orgId string) ([]model.Graph, error)
	SaveTeam(t model.Team) (*model.Team, error)
	GetTeam(id string) (*model.Team, error)
	SaveUser(u model.User) (*model.User, error)
	GetUser(id string) (*model.User, error)
	ActorContext(userId string) (*model.ActorContext, error)
	TeamContains(teamId string, userId string) bool
	FirstActiveMember(teamId string) (string, bool)
}

type MetadataServiceImpl struct {
	storage    persistence.MetadataStorage
	graphCache *c.Cache
}

var _ MetadataService = new(MetadataServiceImpl)

func NewMetadataService(storage persistence.MetadataStorage) *MetadataServiceImpl {
	return &MetadataServiceImpl{
		storage:    storage,
		graphCache: c.New(c.NoExpiration, 10*time.Minute),
	}
}

func (s *MetadataServiceImpl) SaveGraph(g model.Graph) (*model.Graph, error) {
	if g.Id == "" {
		g.Id = uuid.New().String()
	}
	stampGraph(&g)
	if err := s.validateGraph(&g); err != nil {
		return nil, err
	}
	if err := s.checkGraphCycle(&g); err != nil {
		return nil, err
	}
	if err := s.storage.SaveGraph(g); err != nil {
		return nil, err
	}
	s.graphCache.Delete(g.Id)
	return &g, nil
}

func (s *MetadataServiceImpl) GetGraph(id string) (*model.Graph, error) {
	if cached, found := s.graphCache.Get(id); found {
		g := cached.(model.Graph)
		return &g, nil
	}
	g, err := s.storage.GetGraph(id)
	if err != nil {
		return nil, err
	}
	s.graphCache.Set(id, *g, c.NoExpiration)
	return g, nil
}

func (s *MetadataServiceImpl) DeleteGraph(id string) error {
	if err := s.storage.DeleteGraph(id); err != nil {
		return err
	}
	s.graphCache.Delete(id)
	return nil
}

func (s *MetadataServiceImpl) ListGraphs(orgId string) ([]model.Graph, error) {
	return s.storage.ListGraphs(orgId)
}

func (s *MetadataServiceImpl) SaveTeam(t model.Team) (*model.Team, error) {
	if t.Id == "" {
		t.Id = uuid.New().String()
	}
	if t.Name == "" {
		return nil, api.ValidationError{Message: "team name can not be empty"}
	}
	if err := s.checkTeamCycle(&t); err != nil {
		return nil, err
	}
	if err := s.storage.SaveTeam(t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MetadataServiceImpl) GetTeam(id string) (*model.Team, error) {
	return s.storage.GetTeam(id)
}

func (s *MetadataServiceImpl) SaveUser(u model.User) (*model.User, error) {
	if u.Id == "" {
		u.Id = uuid.New().String()
	}
	if err := s.storage.SaveUser(u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MetadataServiceImpl) GetUser(id string) (*model.User, error) {
	return s.storage.GetUser(id)
}

func (s *MetadataServiceImpl) ActorContext(userId string) (*model.ActorContext, error) {
	user, err := s.storage.GetUser(userId)
	if err != nil {
		return nil, err
	}
	actor := model.ActorFromUser(user)
	return &actor, nil
}

// TeamContains reports whether userId is an active member of teamId or of
// any team below it in the hierarchy. The walk carries a visited set so a
// bad parent edge can not recurse forever.
func (s *MetadataServiceImpl) TeamContains(teamId string, userId string) bool {
	team, err := s.storage.GetTeam(teamId)
	if err != nil {
		return false
	}
	teams, err := s.storage.ListTeams(team.OrgId)
	if err != nil {
		return false
	}
	children := make(map[string][]string)
	byId := make(map[string]model.Team, len(teams))
	for _, t := range teams {
		byId[t.Id] = t
		if t.ParentId != "" {
			children[t.ParentId] = append(children[t.ParentId], t.Id)
		}
	}
	visited := make(map[string]bool)
	queue := []string{teamId}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		t, ok := byId[current]
		if !ok {
			continue
		}
		for _, m := range t.Members {
			if m.UserId == userId && m.Active {
				return true
			}
		}
		queue = append(queue, children[current]...)
	}
	return false
}

func (s *MetadataServiceImpl) FirstActiveMember(teamId string) (string, bool) {
	team, err := s.storage.GetTeam(teamId)
	if err != nil {
		return "", false
	}
	for _, m := range team.Members {
		if m.Active {
			return m.UserId, true
		}
	}
	return "", false
}

func stampGraph(g *model.Graph) {
	for i := range g.Steps {
		if g.Steps[i].Id == "" {
			g.Steps[i].Id = uuid.New().String()
		}
		g.Steps[i].GraphId = g.Id
	}
	for i := range g.Transitions {
		if g.Transitions[i].Id == "" {
			g.Transitions[i].Id = uuid.New().String()
		}
		g.Transitions[i].GraphId = g.Id
	}
}

func (s *MetadataServiceImpl) validateGraph(g *model.Graph) error {
	if g.Name == "" {
		return api.ValidationError{Message: "graph name can not be empty"}
	}
	if g.OrgId == "" {
		return api.ValidationError{Message: "graph must belong to an organization"}
	}
	if len(g.Steps) == 0 {
		return api.ValidationError{Message: "graph must have at least one step"}
	}
	stepIds := make(map[string]bool, len(g.Steps))
	for _, st := range g.Steps {
		if st.Name == "" {
			return api.ValidationError{Message: "step name can not be empty"}
		}
		if stepIds[st.Id] {
			return api.ValidationError{Message: fmt.Sprintf("step id %s is duplicate", st.Id)}
		}
		stepIds[st.Id] = true
	}
	if g.StartStep() == nil {
		return api.ValidationError{Message: "graph must have a non terminal start step"}
	}
	pairs := make(map[string]bool, len(g.Transitions))
	for _, tr := range g.Transitions {
		if !stepIds[tr.FromStepId] {
			return api.ValidationError{Message: fmt.Sprintf("transition %s from step %s not in graph", tr.Id, tr.FromStepId)}
		}
		if !stepIds[tr.ToStepId] {
			return api.ValidationError{Message: fmt.Sprintf("transition %s to step %s not in graph", tr.Id, tr.ToStepId)}
		}
		pair := tr.FromStepId + ">" + tr.ToStepId
		if pairs[pair] {
			return api.ValidationError{Message: fmt.Sprintf("duplicate transition between steps %s and %s", tr.FromStepId, tr.ToStepId)}
		}
		pairs[pair] = true
		if err := validatePermission(&tr); err != nil {
			return err
		}
	}
	return nil
}

func validatePermission(tr *model.Transition) error {
	switch tr.PermissionLevel {
	case model.PERMISSION_ANY, model.PERMISSION_ASSIGNEE, model.PERMISSION_TEAM,
		model.PERMISSION_ADMIN, model.PERMISSION_CREATOR:
		return nil
	case model.PERMISSION_CUSTOM:
		if tr.Custom == nil {
			return api.ValidationError{Message: fmt.Sprintf("transition %s has CUSTOM permission without conditions", tr.Id)}
		}
		if tr.Custom.Expression != "" {
			if _, err := goja.Compile("condition", tr.Custom.Expression, false); err != nil {
				return api.ValidationError{Message: fmt.Sprintf("transition %s has invalid condition expression: %v", tr.Id, err)}
			}
		}
		return nil
	}
	return api.ValidationError{Message: fmt.Sprintf("transition %s has unknown permission level %s", tr.Id, tr.PermissionLevel)}
}

// Parent assignments are checked at write time so a later lookup never
// recurses through a cycle.
func (s *MetadataServiceImpl) checkGraphCycle(g *model.Graph) error {
	visited := map[string]bool{g.Id: true}
	parentId := g.ParentId
	for parentId != "" {
		if visited[parentId] {
			return api.ValidationError{Message: fmt.Sprintf("graph parent chain of %s contains a cycle", g.Id)}
		}
		visited[parentId] = true
		parent, err := s.storage.GetGraph(parentId)
		if err != nil {
			if _, ok := err.(api.NotFoundError); ok {
				return api.ValidationError{Message: fmt.Sprintf("parent graph %s does not exist", parentId)}
			}
			return err
		}
		if parent.OrgId != g.OrgId {
			return api.ValidationError{Message: "parent graph belongs to a different organization"}
		}
		parentId = parent.ParentId
	}
	return nil
}

func (s *MetadataServiceImpl) checkTeamCycle(t *model.Team) error {
	visited := map[string]bool{t.Id: true}
	parentId := t.ParentId
	for parentId != "" {
		if visited[parentId] {
			return api.ValidationError{Message: fmt.Sprintf("team parent chain of %s contains a cycle", t.Id)}
		}
		visited[parentId] = true
		parent, err := s.storage.GetTeam(parentId)
		if err != nil {
			if _, ok := err.(api.NotFoundError); ok {
				return api.ValidationError{Message: fmt.Sprintf("parent team %s does not exist", parentId)}
			}
			return err
		}
		parentId = parent.ParentId
	}
	return nil
}
