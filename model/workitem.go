package model

import "time"

type Priority int

const PRIORITY_LOW Priority = 1
const PRIORITY_MEDIUM Priority = 2
const PRIORITY_HIGH Priority = 3
const PRIORITY_CRITICAL Priority = 4

const TRANSFER_HISTORY_KEY string = "transferHistory"

type WorkItem struct {
	Id                   string         `json:"id"`
	GraphId              string         `json:"graphId"`
	CurrentStepId        string         `json:"currentStepId"`
	Title                string         `json:"title"`
	Payload              map[string]any `json:"payload"`
	Priority             Priority       `json:"priority"`
	CreatorId            string         `json:"creatorId"`
	AssigneeId           string         `json:"assigneeId,omitempty"`
	DependsOn            []string       `json:"dependsOn,omitempty"`
	Completed            bool           `json:"completed"`
	CompletedAt          *time.Time     `json:"completedAt,omitempty"`
	CurrentStepEnteredAt time.Time      `json:"currentStepEnteredAt"`
	Version              int64          `json:"version"`
}

type HistoryKind string

const HISTORY_NORMAL HistoryKind = "NORMAL"
const HISTORY_BACKWARD HistoryKind = "BACKWARD"
const HISTORY_TRANSFER HistoryKind = "TRANSFER"
const HISTORY_COMMENT HistoryKind = "COMMENT"

type HistoryRecord struct {
	Id         string         `json:"id"`
	WorkItemId string         `json:"workItemId"`
	FromStepId string         `json:"fromStepId,omitempty"`
	ToStepId   string         `json:"toStepId"`
	ActorId    string         `json:"actorId"`
	Note       string         `json:"note,omitempty"`
	Kind       HistoryKind    `json:"kind"`
	Snapshot   map[string]any `json:"snapshot,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

type TransferEvent struct {
	FromGraphId     string    `json:"fromGraph"`
	FromGraphName   string    `json:"fromGraphName"`
	FromStepId      string    `json:"fromStep"`
	FromStepName    string    `json:"fromStepName"`
	ToGraphId       string    `json:"toGraph"`
	ToGraphName     string    `json:"toGraphName"`
	ToStepId        string    `json:"toStep"`
	ToStepName      string    `json:"toStepName"`
	ActorId         string    `json:"actor"`
	Timestamp       time.Time `json:"timestamp"`
	Note            string    `json:"note,omitempty"`
	BookingsTouched int       `json:"bookingsTouched"`
}

func CopyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch tv := v.(type) {
		case map[string]any:
			out[k] = CopyPayload(tv)
		case []any:
			l := make([]any, 0, len(tv))
			for _, e := range tv {
				if m, ok := e.(map[string]any); ok {
					l = append(l, CopyPayload(m))
				} else {
					l = append(l, e)
				}
			}
			out[k] = l
		default:
			out[k] = v
		}
	}
	return out
}

func (w *WorkItem) TransferHistory() []any {
	raw, ok := w.Payload[TRANSFER_HISTORY_KEY]
	if !ok {
		return nil
	}
	if events, ok := raw.([]any); ok {
		return events
	}
	return nil
}

func (w *WorkItem) AppendTransferEvent(event TransferEvent) {
	if w.Payload == nil {
		w.Payload = make(map[string]any)
	}
	w.Payload[TRANSFER_HISTORY_KEY] = append(w.TransferHistory(), event)
}
