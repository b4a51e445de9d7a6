package types

import "strconv"

// Severity is the closed set of diagnostic levels.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Code is the closed diagnostic-code set from spec.md §6. Adding a rule
// must not add a new code unless §6 is amended.
type Code string

const (
	CodeTypeMismatch     Code = "SNIPE_TYPE_MISMATCH"
	CodeArrayBounds      Code = "SNIPE_ARRAY_BOUNDS"
	CodeSignatureDrift   Code = "SNIPE_SIGNATURE_DRIFT"
	CodeUndefinedSymbol  Code = "SNIPE_UNDEFINED_SYMBOL"
	CodeShadowedSymbol   Code = "SNIPE_SHADOWED_SYMBOL"
	CodeFormatString     Code = "SNIPE_FORMAT_STRING"
	CodeUnusedExtern     Code = "SNIPE_UNUSED_EXTERN"
	CodeDeadImport       Code = "SNIPE_DEAD_IMPORT"
	CodeUnsafeFunction   Code = "SNIPE_UNSAFE_FUNCTION"
	CodeArgTypeMismatch  Code = "SNIPE_ARG_TYPE_MISMATCH"
	CodeStructAccess     Code = "SNIPE_STRUCT_ACCESS"
)

// Diagnostic is a single finding. Dedup key is (File, Line, Code, Message)
// per spec.md §3 — rules must not rely on any other field for uniqueness.
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

// DedupKey returns the tuple diagnostics are deduplicated on.
func (d Diagnostic) DedupKey() [4]string {
	return [4]string{d.File, strconv.Itoa(d.Line), string(d.Code), d.Message}
}

// Dedup removes diagnostics sharing a DedupKey, keeping the first
// occurrence and preserving relative order (property P5).
func Dedup(diags []Diagnostic) []Diagnostic {
	seen := make(map[[4]string]struct{}, len(diags))
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		k := d.DedupKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}
