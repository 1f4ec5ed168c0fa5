package model

import "github.com/mohitkumar/stepline/util"

type User struct {
	Id          string   `json:"id"`
	OrgId       string   `json:"orgId"`
	Name        string   `json:"name"`
	Admin       bool     `json:"admin"`
	Staff       bool     `json:"staff"`
	CanTransfer bool     `json:"canTransfer"`
	TeamIds     []string `json:"teamIds,omitempty"`
	Active      bool     `json:"active"`
}

type Team struct {
	Id       string       `json:"id"`
	OrgId    string       `json:"orgId"`
	Name     string       `json:"name"`
	ParentId string       `json:"parentId,omitempty"`
	Members  []TeamMember `json:"members,omitempty"`
}

type TeamMember struct {
	UserId string `json:"userId"`
	Active bool   `json:"active"`
}

type ActorContext struct {
	UserId      string   `json:"userId"`
	OrgId       string   `json:"orgId"`
	Admin       bool     `json:"admin"`
	Staff       bool     `json:"staff"`
	CanTransfer bool     `json:"canTransfer"`
	TeamIds     []string `json:"teamIds,omitempty"`
}

func ActorFromUser(u *User) ActorContext {
	return ActorContext{
		UserId:      u.Id,
		OrgId:       u.OrgId,
		Admin:       u.Admin,
		Staff:       u.Staff,
		CanTransfer: u.CanTransfer,
		TeamIds:     u.TeamIds,
	}
}

func (a ActorContext) InTeam(teamId string) bool {
	return util.Contains(a.TeamIds, teamId)
}
