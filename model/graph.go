package model

import "strings"

type PermissionLevel string

const PERMISSION_ANY PermissionLevel = "ANY"
const PERMISSION_ASSIGNEE PermissionLevel = "ASSIGNEE"
const PERMISSION_TEAM PermissionLevel = "TEAM"
const PERMISSION_ADMIN PermissionLevel = "ADMIN"
const PERMISSION_CREATOR PermissionLevel = "CREATOR"
const PERMISSION_CUSTOM PermissionLevel = "CUSTOM"

type Graph struct {
	Id            string       `json:"id"`
	OrgId         string       `json:"orgId"`
	Name          string       `json:"name"`
	ParentId      string       `json:"parentId,omitempty"`
	OwnerTeamId   string       `json:"ownerTeamId"`
	ViewerTeamIds []string     `json:"viewerTeamIds,omitempty"`
	EditorTeamIds []string     `json:"editorTeamIds,omitempty"`
	Active        bool         `json:"active"`
	Steps         []Step       `json:"steps"`
	Transitions   []Transition `json:"transitions"`
}

type Step struct {
	Id               string `json:"id"`
	GraphId          string `json:"graphId"`
	Name             string `json:"name"`
	Order            int    `json:"order"`
	AssignedTeamId   string `json:"assignedTeamId,omitempty"`
	RequiresBooking  bool   `json:"requiresBooking"`
	EstimatedMinutes int    `json:"estimatedMinutes,omitempty"`
	Terminal         bool   `json:"terminal"`
}

type Transition struct {
	Id                   string           `json:"id"`
	GraphId              string           `json:"graphId"`
	FromStepId           string           `json:"fromStepId"`
	ToStepId             string           `json:"toStepId"`
	Label                string           `json:"label"`
	PermissionLevel      PermissionLevel  `json:"permissionLevel"`
	RequiresConfirmation bool             `json:"requiresConfirmation"`
	RequiresComment      bool             `json:"requiresComment"`
	AutoAssignToStepTeam bool             `json:"autoAssignToStepTeam"`
	Custom               *CustomCondition `json:"custom,omitempty"`
	Active               bool             `json:"active"`
}

type CustomCondition struct {
	MinPriority       Priority `json:"minPriority,omitempty"`
	BusinessHoursOnly bool     `json:"businessHoursOnly,omitempty"`
	Expression        string   `json:"expression,omitempty"`
}

func (g *Graph) StepById(id string) *Step {
	for i := range g.Steps {
		if g.Steps[i].Id == id {
			return &g.Steps[i]
		}
	}
	return nil
}

func (g *Graph) StepByName(name string) *Step {
	for i := range g.Steps {
		if strings.EqualFold(g.Steps[i].Name, name) {
			return &g.Steps[i]
		}
	}
	return nil
}

func (g *Graph) TransitionById(id string) *Transition {
	for i := range g.Transitions {
		if g.Transitions[i].Id == id {
			return &g.Transitions[i]
		}
	}
	return nil
}

func (g *Graph) StartStep() *Step {
	var start *Step
	for i := range g.Steps {
		st := &g.Steps[i]
		if st.Terminal {
			continue
		}
		if start == nil || st.Order < start.Order {
			start = st
		}
	}
	return start
}
