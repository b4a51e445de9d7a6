package types

// UseKind enumerates how a reference uses a name. UseReturn is an internal
// addition beyond spec.md §3's illustrative set, needed to correlate a
// `return EXPR` site with its enclosing function for R-TYPE-RETURN; it does
// not add a diagnostic code and stays invisible outside internal/rules.
type UseKind string

const (
	UseCall         UseKind = "call"
	UseRead         UseKind = "read"
	UseWrite        UseKind = "write"
	UseArrayAccess  UseKind = "array_access"
	UseMemberAccess UseKind = "member_access"
	UseFormatCall   UseKind = "format_call"
	UseImportUse    UseKind = "import_use"
	UseReturn       UseKind = "return"
)

// ApparentType is the shallow, literal-driven type guess described in
// spec.md §4.2. "unknown" is a first-class value: it suppresses the type
// checks that would otherwise run against the site, never produces a false
// positive by itself.
type ApparentType string

const Unknown ApparentType = "unknown"

// Reference is a use-site emitted by the extractor. Context fields are
// populated according to Kind; fields irrelevant to a given Kind are left
// at their zero value.
type Reference struct {
	Name     string
	Kind     UseKind
	File     string
	Line     int
	Language Language
	Scope    Scope // lexical scope the reference occurs in (R-SHADOW needs function vs module)

	// Call sites (UseCall, UseFormatCall).
	ArgTypes []ApparentType
	// ArgExprs holds, per argument, the raw identifier name when the
	// extractor's file-local pass could not resolve its type (Unknown in
	// ArgTypes at the same index) — internal/rules can then try a
	// repo-wide lookup. Empty string means the argument wasn't a bare
	// identifier (so no further resolution is possible).
	ArgExprs []string
	ArgCount int

	// Array/subscript access (UseArrayAccess).
	IndexLiteral   int
	IndexIsLiteral bool

	// Format calls (UseFormatCall): the literal format string, when present.
	FormatLiteral    string
	HasFormatLiteral bool

	// Member access (UseMemberAccess): receiver.apparent_type.member
	ReceiverType ApparentType
	Member       string

	// Write sites (UseWrite): RHS apparent type and, for annotated Python
	// assignment targets, the LHS's declared annotation. RHSExpr mirrors
	// ArgExprs' deferred-resolution role when RHSType is Unknown.
	RHSType        ApparentType
	RHSExpr        string
	TargetDeclared string
	IsAnnotated    bool

	// Return sites (UseReturn): the enclosing function's name, so rules can
	// look its declared ReturnType up without re-walking the tree.
	EnclosingFunction string
}
