package model

import "time"

type Booking struct {
	Id         string            `json:"id"`
	WorkItemId string            `json:"workItemId"`
	StepId     string            `json:"stepId"`
	TeamId     string            `json:"teamId,omitempty"`
	Resource   string            `json:"resource,omitempty"`
	Completed  bool              `json:"completed"`
	MirrorRef  string            `json:"mirrorRef,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type WorkItemCreateRequest struct {
	GraphId  string         `json:"graphId"`
	Title    string         `json:"title"`
	Payload  map[string]any `json:"payload,omitempty"`
	Priority Priority       `json:"priority,omitempty"`
}

type TransitionRequest struct {
	TransitionId string `json:"transitionId"`
	Note         string `json:"note,omitempty"`
	Confirmed    bool   `json:"confirmed,omitempty"`
}

type BackwardRequest struct {
	TargetStepId string `json:"targetStepId"`
	Note         string `json:"note"`
}

type TransferRequest struct {
	DestGraphId      string `json:"destGraphId"`
	DestStepId       string `json:"destStepId"`
	PreserveAssignee bool   `json:"preserveAssignee,omitempty"`
	Note             string `json:"note,omitempty"`
}

type AssignRequest struct {
	AssigneeId string `json:"assigneeId"`
}

type PriorityRequest struct {
	Priority Priority `json:"priority"`
}

type BookingCreateRequest struct {
	StepId   string `json:"stepId"`
	TeamId   string `json:"teamId,omitempty"`
	Resource string `json:"resource,omitempty"`
}
