package model

// IntentScope tags what a signed message is for, so a signature produced for
// one purpose cannot be replayed as another.
type IntentScope uint8

const (
	IntentAttestation IntentScope = 0
	IntentProcessData IntentScope = 1
)

// UpdateResponse is the inner payload of a signed feed update.
type UpdateResponse struct {
	Result OracleValue `json:"result"`
}

// IntentMessage binds a payload to its intent scope and signing timestamp.
// The signature in SignedEnvelope covers the canonical JSON of this struct.
type IntentMessage struct {
	IntentScope IntentScope    `json:"intent_scope"`
	TimestampMS uint64         `json:"timestamp_ms"`
	Data        UpdateResponse `json:"data"`
}

// SignedEnvelope is the attested packaging of an oracle result, produced by
// the signing collaborator and returned verbatim to the transport layer.
type SignedEnvelope struct {
	Response  IntentMessage `json:"response"`
	Signature string        `json:"signature"`
	PublicKey string        `json:"public_key"`
}

// ExecuteCodeResult is the in-band outcome of a direct script validation run.
// Execution or coercion failure is reported via Success/Error, never as a
// transport error, so operators can iterate on scripts before publishing.
type ExecuteCodeResult struct {
	Result      OracleValue `json:"result"`
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
	ExecutionID string      `json:"execution_id"`
}
