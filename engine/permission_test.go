package engine

import (
	"testing"
	"time"

	"github.com/mohitkumar/stepline/model"
	"github.com/stretchr/testify/require"
)

func TestCanExecuteLevels(t *testing.T) {
	scenarios := map[string]struct {
		level model.PermissionLevel
		actor model.ActorContext
		item  model.WorkItem
		want  bool
	}{
		"any lets everyone through": {
			level: model.PERMISSION_ANY,
			actor: actor("u1"),
			want:  true,
		},
		"assignee matches": {
			level: model.PERMISSION_ASSIGNEE,
			actor: actor("worker1"),
			item:  model.WorkItem{AssigneeId: "worker1"},
			want:  true,
		},
		"assignee mismatch": {
			level: model.PERMISSION_ASSIGNEE,
			actor: actor("u1"),
			item:  model.WorkItem{AssigneeId: "worker1"},
			want:  false,
		},
		"unassigned item denies assignee level": {
			level: model.PERMISSION_ASSIGNEE,
			actor: actor("u1"),
			want:  false,
		},
		"team member": {
			level: model.PERMISSION_TEAM,
			actor: actor("member1"),
			want:  true,
		},
		"not a team member": {
			level: model.PERMISSION_TEAM,
			actor: actor("outsider"),
			want:  false,
		},
		"admin level admits admin": {
			level: model.PERMISSION_ADMIN,
			actor: admin("boss"),
			want:  true,
		},
		"admin level admits staff": {
			level: model.PERMISSION_ADMIN,
			actor: model.ActorContext{UserId: "helper", OrgId: "org1", Staff: true},
			want:  true,
		},
		"admin level denies others": {
			level: model.PERMISSION_ADMIN,
			actor: actor("u1"),
			want:  false,
		},
		"creator matches": {
			level: model.PERMISSION_CREATOR,
			actor: actor("creator1"),
			want:  true,
		},
		"creator mismatch": {
			level: model.PERMISSION_CREATOR,
			actor: actor("u1"),
			want:  false,
		},
	}
	for name, scenario := range scenarios {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.metadata.SaveTeam(model.Team{
				Id: "team1", OrgId: "org1", Name: "reviewers",
				Members: []model.TeamMember{{UserId: "member1", Active: true}},
			})
			require.NoError(t, err)
			graph := env.saveGraph(t, reviewGraph())

			item := scenario.item
			item.Id = "item1"
			item.GraphId = graph.Id
			item.CurrentStepId = "review"
			item.CreatorId = "creator1"

			transition := &model.Transition{Id: "t", PermissionLevel: scenario.level}
			require.Equal(t, scenario.want, env.gate.CanExecute(scenario.actor, transition, &item))
		})
	}
}

func TestCanExecuteTeamStepWithoutTeam(t *testing.T) {
	env := newTestEnv(t)
	graph := env.saveGraph(t, reviewGraph())
	item := &model.WorkItem{Id: "item1", GraphId: graph.Id, CurrentStepId: "new"}
	transition := &model.Transition{Id: "t", PermissionLevel: model.PERMISSION_TEAM}
	require.False(t, env.gate.CanExecute(actor("anyone"), transition, item))
}

func TestCanExecuteNestedTeamMembership(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.metadata.SaveTeam(model.Team{Id: "team1", OrgId: "org1", Name: "reviewers"})
	require.NoError(t, err)
	_, err = env.metadata.SaveTeam(model.Team{
		Id: "team1-sub", OrgId: "org1", Name: "night shift", ParentId: "team1",
		Members: []model.TeamMember{{UserId: "night1", Active: true}},
	})
	require.NoError(t, err)
	graph := env.saveGraph(t, reviewGraph())
	item := &model.WorkItem{Id: "item1", GraphId: graph.Id, CurrentStepId: "review"}
	transition := &model.Transition{Id: "t", PermissionLevel: model.PERMISSION_TEAM}
	require.True(t, env.gate.CanExecute(actor("night1"), transition, item))
}

func TestCustomConditions(t *testing.T) {
	scenarios := map[string]struct {
		custom *model.CustomCondition
		actor  model.ActorContext
		item   model.WorkItem
		now    time.Time
		want   bool
	}{
		"nil condition never passes": {
			custom: nil,
			actor:  actor("u1"),
			want:   false,
		},
		"priority at threshold": {
			custom: &model.CustomCondition{MinPriority: model.PRIORITY_HIGH},
			actor:  actor("u1"),
			item:   model.WorkItem{Priority: model.PRIORITY_HIGH},
			want:   true,
		},
		"priority below threshold": {
			custom: &model.CustomCondition{MinPriority: model.PRIORITY_HIGH},
			actor:  actor("u1"),
			item:   model.WorkItem{Priority: model.PRIORITY_MEDIUM},
			want:   false,
		},
		"business hours weekday": {
			custom: &model.CustomCondition{BusinessHoursOnly: true},
			actor:  actor("u1"),
			now:    time.Date(2024, time.March, 6, 11, 0, 0, 0, time.UTC),
			want:   true,
		},
		"business hours evening": {
			custom: &model.CustomCondition{BusinessHoursOnly: true},
			actor:  actor("u1"),
			now:    time.Date(2024, time.March, 6, 19, 0, 0, 0, time.UTC),
			want:   false,
		},
		"business hours saturday": {
			custom: &model.CustomCondition{BusinessHoursOnly: true},
			actor:  actor("u1"),
			now:    time.Date(2024, time.March, 9, 11, 0, 0, 0, time.UTC),
			want:   false,
		},
		"expression over actor and item": {
			custom: &model.CustomCondition{Expression: "$actor.canTransfer && $item.priority >= 3"},
			actor:  model.ActorContext{UserId: "u1", OrgId: "org1", CanTransfer: true},
			item:   model.WorkItem{Priority: model.PRIORITY_CRITICAL},
			want:   true,
		},
		"expression rejects": {
			custom: &model.CustomCondition{Expression: "$actor.canTransfer && $item.priority >= 3"},
			actor:  actor("u1"),
			item:   model.WorkItem{Priority: model.PRIORITY_CRITICAL},
			want:   false,
		},
		"broken expression fails closed": {
			custom: &model.CustomCondition{Expression: "($item.priority"},
			actor:  actor("u1"),
			want:   false,
		},
		"all conditions combine": {
			custom: &model.CustomCondition{MinPriority: model.PRIORITY_HIGH, BusinessHoursOnly: true, Expression: "$item.priority < 4"},
			actor:  actor("u1"),
			item:   model.WorkItem{Priority: model.PRIORITY_HIGH},
			now:    time.Date(2024, time.March, 6, 11, 0, 0, 0, time.UTC),
			want:   true,
		},
	}
	for name, scenario := range scenarios {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			if !scenario.now.IsZero() {
				now := scenario.now
				env.gate.now = func() time.Time { return now }
			}
			item := scenario.item
			item.Id = "item1"
			transition := &model.Transition{Id: "t", PermissionLevel: model.PERMISSION_CUSTOM, Custom: scenario.custom}
			require.Equal(t, scenario.want, env.gate.CanExecute(scenario.actor, transition, &item))
		})
	}
}

func TestSetBusinessHours(t *testing.T) {
	env := newTestEnv(t)
	env.gate.now = func() time.Time { return time.Date(2024, time.March, 6, 8, 30, 0, 0, time.UTC) }
	item := &model.WorkItem{Id: "item1"}
	transition := &model.Transition{Id: "t", PermissionLevel: model.PERMISSION_CUSTOM,
		Custom: &model.CustomCondition{BusinessHoursOnly: true}}

	require.True(t, env.gate.CanExecute(actor("u1"), transition, item))

	env.gate.SetBusinessHours(9, 17)
	require.False(t, env.gate.CanExecute(actor("u1"), transition, item))

	// nonsense ranges are ignored
	env.gate.SetBusinessHours(17, 9)
	require.False(t, env.gate.CanExecute(actor("u1"), transition, item))
}

func TestCanMoveBackward(t *testing.T) {
	env := newTestEnv(t)
	item := &model.WorkItem{Id: "item1", CreatorId: "creator1"}
	require.True(t, env.gate.CanMoveBackward(admin("boss"), item))
	require.True(t, env.gate.CanMoveBackward(model.ActorContext{UserId: "helper", Staff: true}, item))
	require.True(t, env.gate.CanMoveBackward(actor("creator1"), item))
	require.False(t, env.gate.CanMoveBackward(actor("bystander"), item))
}

func TestTransferAccessGraphChecks(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.metadata.SaveTeam(model.Team{
		Id: "viewers", OrgId: "org1", Name: "viewers",
		Members: []model.TeamMember{{UserId: "viewer1", Active: true}},
	})
	require.NoError(t, err)
	src := env.saveGraph(t, reviewGraph())
	g := fulfilmentGraph()
	g.ViewerTeamIds = []string{"viewers"}
	dest := env.saveGraph(t, g)
	item := &model.WorkItem{Id: "item1", GraphId: src.Id}

	t.Run("org mismatch denies everything", func(t *testing.T) {
		access := env.gate.TransferAccess(model.ActorContext{UserId: "x", OrgId: "org2", Admin: true}, item, src, dest)
		require.True(t, access.HasPermission)
		require.False(t, access.HasCurrentAccess)
		require.False(t, access.CanAccessDestination)
	})

	t.Run("viewer team grants destination access only", func(t *testing.T) {
		access := env.gate.TransferAccess(model.ActorContext{UserId: "viewer1", OrgId: "org1", CanTransfer: true}, item, src, dest)
		require.True(t, access.HasPermission)
		require.False(t, access.HasCurrentAccess)
		require.True(t, access.CanAccessDestination)
	})

	t.Run("org admin passes all checks", func(t *testing.T) {
		access := env.gate.TransferAccess(admin("boss"), item, src, dest)
		require.True(t, access.Allowed())
	})
}

func TestGraphAccessLeavesTeamSlicesIntact(t *testing.T) {
	env := newTestEnv(t)
	srcGraph := reviewGraph()

	// viewer slice with spare capacity shares its backing array; the
	// access scan must not write editor ids into it
	backing := []string{"viewers", "sentinel"}
	destGraph := fulfilmentGraph()
	destGraph.ViewerTeamIds = backing[:1]
	destGraph.EditorTeamIds = []string{"editors"}

	item := &model.WorkItem{Id: "item1", GraphId: srcGraph.Id}
	env.gate.TransferAccess(model.ActorContext{UserId: "u1", OrgId: "org1"}, item, &srcGraph, &destGraph)

	require.Equal(t, []string{"viewers", "sentinel"}, backing)
	require.Equal(t, []string{"viewers"}, destGraph.ViewerTeamIds)
	require.Equal(t, []string{"editors"}, destGraph.EditorTeamIds)
}
