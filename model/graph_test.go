package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartStep(t *testing.T) {
	g := Graph{Steps: []Step{
		{Id: "done", Name: "Done", Order: 3, Terminal: true},
		{Id: "review", Name: "Review", Order: 2},
		{Id: "new", Name: "New", Order: 1},
	}}
	require.Equal(t, "new", g.StartStep().Id)

	terminalOnly := Graph{Steps: []Step{{Id: "done", Name: "Done", Order: 1, Terminal: true}}}
	require.Nil(t, terminalOnly.StartStep())
}

func TestStepByNameIgnoresCase(t *testing.T) {
	g := Graph{Steps: []Step{{Id: "review", Name: "Review", Order: 1}}}
	require.NotNil(t, g.StepByName("review"))
	require.NotNil(t, g.StepByName("REVIEW"))
	require.Nil(t, g.StepByName("reviews"))
}

func TestGraphLookups(t *testing.T) {
	g := Graph{
		Steps:       []Step{{Id: "s1", Name: "One", Order: 1}},
		Transitions: []Transition{{Id: "t1", FromStepId: "s1", ToStepId: "s1"}},
	}
	require.NotNil(t, g.StepById("s1"))
	require.Nil(t, g.StepById("ghost"))
	require.NotNil(t, g.TransitionById("t1"))
	require.Nil(t, g.TransitionById("ghost"))
}
