package store

// Status is the pipeline-internal lifecycle state of a record. It moves only
// forward; the operator-facing workflow_status is a separate free-form field
// the pipeline never touches.
type Status string

const (
	// StatusNew marks a bare row created by URL discovery, detail fields
	// still unpopulated.
	StatusNew Status = "NEW"
	// StatusProcessed marks a fully enriched row. Terminal for the pipeline.
	StatusProcessed Status = "PROCESSED"
	// StatusFailed marks a row whose detail processing did not yield an
	// info-hash. Eligible for retry.
	StatusFailed Status = "FAILED"
)

// CanTransition reports whether the status machine allows moving from s to
// next. Repeating FAILED is allowed (retry that fails again is a no-op);
// nothing leaves PROCESSED.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusNew:
		return next == StatusProcessed || next == StatusFailed
	case StatusFailed:
		return next == StatusProcessed || next == StatusFailed
	default:
		return false
	}
}

// Outcome is the result code of one repository write.
type Outcome string

const (
	// OutcomeAdded reports a direct insert of a fully enriched row.
	OutcomeAdded Outcome = "ADDED"
	// OutcomeUpdated reports successful enrichment of an existing row.
	OutcomeUpdated Outcome = "UPDATED"
	// OutcomeDuplicate reports content-hash or URL dedup; the incoming row
	// was dropped in favor of the existing one.
	OutcomeDuplicate Outcome = "DUPLICATE"
	// OutcomeFailed reports a record that could not be classified (no
	// resolvable info-hash) or whose fetch/extract failed.
	OutcomeFailed Outcome = "FAILED"
)
