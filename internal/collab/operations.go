package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/sjson"
)

// OpHandler owns the boards a hub serves. The hub never touches a document
// itself; it forwards sync requests and operations here.
type OpHandler interface {
	// Sync returns the encoded state sent to a client joining boardID.
	Sync(ctx context.Context, boardID string) (json.RawMessage, error)
	// Apply runs op on boardID for userID. The returned result, if any, is
	// echoed to the submitter in the ack.
	Apply(ctx context.Context, boardID, userID string, op Operation) (json.RawMessage, error)
}

var ErrInvalidOperation = errors.New("invalid operation")

func (h *Hub) handleOpSubmit(ctx context.Context, sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		sender.SendError(fmt.Sprintf("invalid op.submit payload: %v", err))
		return
	}
	op := submit.Operation
	if op.ID == "" || op.Type == "" {
		h.nack(sender, op.ID, ErrInvalidOperation)
		return
	}

	result, err := h.handler.Apply(ctx, sender.BoardID, sender.UserID, op)
	if err != nil {
		slog.Info("operation rejected", "op", op.Type, "id", op.ID, "board", sender.BoardID, "error", err)
		h.nack(sender, op.ID, err)
		return
	}

	seq := h.nextSeq(sender.BoardID)
	payload, err := ackPayload(op.ID, seq, time.Now(), result)
	if err != nil {
		slog.Error("build ack", "error", err)
		return
	}
	sender.Send(&Message{Type: TypeOpAck, Seq: seq, Payload: payload})
}

func (h *Hub) nack(sender *Client, opID string, reason error) {
	payload, _ := json.Marshal(OperationNackPayload{OperationID: opID, Reason: reason.Error()})
	sender.Send(&Message{Type: TypeOpNack, Payload: payload})
}

// ackPayload builds {"operationId","serverSeq","serverTimestamp","result"},
// embedding result verbatim.
func ackPayload(opID string, seq int64, at time.Time, result json.RawMessage) (json.RawMessage, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "operationId", opID); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "serverSeq", seq); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "serverTimestamp", at.UnixMilli()); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		if out, err = sjson.SetRawBytes(out, "result", result); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NewDocChanged builds a doc.changed message carrying snapshot verbatim.
func NewDocChanged(event, description string, snapshot []byte) (*Message, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "event", event); err != nil {
		return nil, err
	}
	if description != "" {
		if out, err = sjson.SetBytes(out, "description", description); err != nil {
			return nil, err
		}
	}
	if len(snapshot) > 0 {
		if out, err = sjson.SetRawBytes(out, "snapshot", snapshot); err != nil {
			return nil, err
		}
	}
	return &Message{Type: TypeDocChanged, Payload: out}, nil
}
