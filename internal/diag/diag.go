package diag

// Reason identifies the class of a recoverable analysis failure.
type Reason string

const (
	// ReasonSyntaxParse means a source unit could not be parsed structurally.
	// The unit is skipped for tree-based analysis; textual fallbacks may still
	// run.
	ReasonSyntaxParse Reason = "syntax-parse-error"

	// ReasonPatternMismatch means a candidate shape partially matched a known
	// pattern but failed a sub-condition. The declaration falls back to a
	// lower tier instead of erroring.
	ReasonPatternMismatch Reason = "pattern-mismatch"

	// ReasonPairingAmbiguity means more than one factory candidate could pair
	// with the same wrapper. Resolution is first-match-in-source-order; the
	// ambiguity is recorded, not raised.
	ReasonPairingAmbiguity Reason = "pairing-ambiguity"

	// ReasonUnitNotCompleted means a batch run was cancelled before this unit
	// was scheduled.
	ReasonUnitNotCompleted Reason = "unit-not-completed"
)

// Diagnostic describes a recoverable failure attached to a run result.
// Diagnostics are never thrown; a batch run always completes and returns both
// its best-effort results and the full diagnostic list.
type Diagnostic struct {
	File   string `json:"file"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}
