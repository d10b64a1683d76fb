package collab

import (
	"encoding/json"
	"time"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// PresencePayload is what a client reports about its pointer. Marquee is
// the rubber band it is dragging, if any.
type PresencePayload struct {
	Cursor      *CursorPos   `json:"cursor,omitempty"`
	Selection   []string     `json:"selection,omitempty"`
	Marquee     *MarqueeRect `json:"marquee,omitempty"`
	UserID      string       `json:"userId,omitempty"`
	DisplayName string       `json:"displayName,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type MarqueeRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID   string `json:"userId"`
	ClientID string `json:"clientId"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	BoardID  string `json:"boardId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypePresenceIdle   = "presence.idle"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync    = "doc.sync"
	TypeDocChanged = "doc.changed"

	// Operations
	TypeOpSubmit = "op.submit"
	TypeOpAck    = "op.ack"
	TypeOpNack   = "op.nack"
)

// Operation is a client request to change a board. Payload is interpreted
// by the OpHandler according to Type.
type Operation struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	ClientSeq int64           `json:"clientSeq"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// DocChangedPayload announces that a board's document changed. Event is one
// of "do", "undo", "redo" or "reset".
type DocChangedPayload struct {
	Event       string          `json:"event"`
	Description string          `json:"description,omitempty"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
}
