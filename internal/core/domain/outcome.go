package domain

// WriteOutcome is the result of reconciling one candidate against the store.
type WriteOutcome string

// Write outcomes.
const (
	OutcomeCreated WriteOutcome = "created"
	OutcomeMerged  WriteOutcome = "merged"
	OutcomeSkipped WriteOutcome = "skipped"
	OutcomeFailed  WriteOutcome = "failed"
)

// String returns the string representation.
func (o WriteOutcome) String() string {
	return string(o)
}

// Candidate is a record ready for the merge-upsert writer.
type Candidate struct {
	Record CanonicalRecord

	// Update marks a record the canonical index already knows.
	// The writer looks up the stored document and gap-fills it.
	Update bool
}

// WriteResult reports the outcome for one candidate.
type WriteResult struct {
	RecordID string
	Key      string
	Outcome  WriteOutcome
	Fields   []string
	Err      error
}

// OpKind is the kind of a batched store operation.
type OpKind string

// Operation kinds.
const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
)

// WriteOp is one operation submitted to RecordStore.Bulk.
type WriteOp struct {
	Kind OpKind

	// Record is the full document for OpCreate.
	Record *CanonicalRecord

	// ID and Patch identify and describe an OpUpdate.
	ID    string
	Patch RecordPatch
}

// OpResult is the per-operation result of a batched write.
// Err is nil on success.
type OpResult struct {
	ID  string
	Err error
}
