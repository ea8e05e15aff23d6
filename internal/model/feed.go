package model

// Feed is the schema record describing one oracle data feed. It is resolved
// from the feed registry at the start of each pipeline run and treated as an
// immutable snapshot for the duration of that run.
type Feed struct {
	ID string `json:"id"`
	// BlobRef addresses the script payload in the blob store.
	BlobRef    string     `json:"blob_ref"`
	Language   Language   `json:"language"`
	ReturnType ReturnType `json:"return_type"`
	// LastResult is the most recent successfully produced value, if any.
	LastResult *OracleValue `json:"last_result,omitempty"`
	// UpdateCadenceMS is the minimum interval between feed updates.
	UpdateCadenceMS uint64 `json:"update_cadence_ms"`
	// LastUpdateMS is the timestamp of the last successful update.
	LastUpdateMS uint64 `json:"last_update_ms"`
}
