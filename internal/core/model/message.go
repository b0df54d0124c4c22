package model

import "time"

type AgentRole string

const (
	RoleGenerator    AgentRole = "generator"
	RoleVerifier     AgentRole = "verifier"
	RoleOrchestrator AgentRole = "orchestrator"
)

type MessageType string

const (
	MessageRequest         MessageType = "request"
	MessageResult          MessageType = "result"
	MessageRevisionRequest MessageType = "revision_request"
	MessageError           MessageType = "error"
)

// AgentMessage is the unit of inter-agent communication. Messages are
// immutable once sent; only the orchestrator correlates and sequences them.
type AgentMessage struct {
	ID      string
	Sender  AgentRole
	Type    MessageType
	SentAt  time.Time
	Payload MessagePayload
}

// MessagePayload is a closed union: one variant per message shape so the
// orchestrator can dispatch exhaustively.
type MessagePayload interface {
	payloadKind() string
}

type DraftRequestPayload struct {
	Kind     DocumentKind
	Revision *Revision // nil on the first draft
}

type DraftResultPayload struct {
	Result GenerationResult
}

type VerifyRequestPayload struct {
	Document Document
}

type VerifyResultPayload struct {
	Result VerificationResult
}

type ErrorPayload struct {
	Reason string
}

func (DraftRequestPayload) payloadKind() string  { return "draft_request" }
func (DraftResultPayload) payloadKind() string   { return "draft_result" }
func (VerifyRequestPayload) payloadKind() string { return "verify_request" }
func (VerifyResultPayload) payloadKind() string  { return "verify_result" }
func (ErrorPayload) payloadKind() string         { return "error" }
