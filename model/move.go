package model

type MoveType int

const MOVE_FORWARD MoveType = 1
const MOVE_BACKWARD MoveType = 2
const MOVE_TRANSFER MoveType = 3

// Move is the closed set of work item movements. Exactly one variant's
// fields are meaningful for a given Type.
type Move struct {
	Type             MoveType `json:"type"`
	TransitionId     string   `json:"transitionId,omitempty"`
	TargetStepId     string   `json:"targetStepId,omitempty"`
	DestGraphId      string   `json:"destGraphId,omitempty"`
	DestStepId       string   `json:"destStepId,omitempty"`
	PreserveAssignee bool     `json:"preserveAssignee,omitempty"`
	Confirmed        bool     `json:"confirmed,omitempty"`
	Note             string   `json:"note,omitempty"`
}

func ForwardMove(transitionId string, note string) Move {
	return Move{Type: MOVE_FORWARD, TransitionId: transitionId, Note: note}
}

func BackwardMove(targetStepId string, note string) Move {
	return Move{Type: MOVE_BACKWARD, TargetStepId: targetStepId, Note: note}
}

func TransferMove(destGraphId string, destStepId string, preserveAssignee bool, note string) Move {
	return Move{
		Type:             MOVE_TRANSFER,
		DestGraphId:      destGraphId,
		DestStepId:       destStepId,
		PreserveAssignee: preserveAssignee,
		Note:             note,
	}
}

type MoveOutcome string

const OUTCOME_OK MoveOutcome = "OK"
const OUTCOME_TRANSITION_MISMATCH MoveOutcome = "TRANSITION_MISMATCH"
const OUTCOME_PERMISSION_DENIED MoveOutcome = "PERMISSION_DENIED"
const OUTCOME_BOOKING_REQUIRED MoveOutcome = "BOOKING_REQUIRED"
const OUTCOME_BOOKING_INCOMPLETE MoveOutcome = "BOOKING_INCOMPLETE"
const OUTCOME_COMMENT_REQUIRED MoveOutcome = "COMMENT_REQUIRED"
const OUTCOME_CONFIRMATION_REQUIRED MoveOutcome = "CONFIRMATION_REQUIRED"
const OUTCOME_NOT_PREVIOUSLY_VISITED MoveOutcome = "NOT_PREVIOUSLY_VISITED"
const OUTCOME_SAME_GRAPH MoveOutcome = "SAME_GRAPH"
const OUTCOME_STEP_GRAPH_MISMATCH MoveOutcome = "STEP_GRAPH_MISMATCH"
const OUTCOME_TRANSFER_DENIED MoveOutcome = "TRANSFER_DENIED"

// TransferAccess reports the three independent transfer permission checks
// so callers can render a precise denial message.
type TransferAccess struct {
	HasPermission        bool `json:"hasPermission"`
	HasCurrentAccess     bool `json:"hasCurrentAccess"`
	CanAccessDestination bool `json:"canAccessDestination"`
}

func (t TransferAccess) Allowed() bool {
	return t.HasPermission && t.HasCurrentAccess && t.CanAccessDestination
}

type MoveResult struct {
	Success        bool            `json:"success"`
	Outcome        MoveOutcome     `json:"outcome"`
	Message        string          `json:"message"`
	Notices        []string        `json:"notices,omitempty"`
	BookingNeeded  bool            `json:"bookingNeeded,omitempty"`
	BookingsRemain int             `json:"bookingsRemaining,omitempty"`
	BookingsTotal  int             `json:"bookingsTotal,omitempty"`
	TransferAccess *TransferAccess `json:"transferAccess,omitempty"`
	Item           *WorkItem       `json:"item,omitempty"`
}

func BlockedResult(outcome MoveOutcome, message string) *MoveResult {
	return &MoveResult{Success: false, Outcome: outcome, Message: message}
}
