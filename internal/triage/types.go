// Package triage defines the fixture and agent-output types shared by the
// evaluation harness.
package triage

import "encoding/json"

// TestCase is one labeled fixture record. Cases are loaded once per run and
// never mutated.
type TestCase struct {
	ID         string   `json:"id" validate:"required"`
	Input      Input    `json:"input"`
	Expected   Expected `json:"expected"`
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// Input is the email content fed to the agent.
type Input struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	ERPContext string `json:"erpContext,omitempty"`
}

// Expected is the oracle for a test case. Autosend is a pointer so a
// fixture that omits the label is rejected instead of reading as false.
type Expected struct {
	RequestType string   `json:"request_type" validate:"required"`
	RouteTeam   string   `json:"route_team" validate:"required"`
	Autosend    *bool    `json:"autosend" validate:"required"`
	MustNot     []string `json:"mustNot" validate:"dive,required"`
}

// WantAutosend returns the expected autosend label. Cases built in code
// without one expect false.
func (e Expected) WantAutosend() bool {
	return e.Autosend != nil && *e.Autosend
}

// CategoryOrDefault returns the case category, or "uncategorized" when unset.
func (c TestCase) CategoryOrDefault() string {
	if c.Category == "" {
		return Uncategorized
	}
	return c.Category
}

// Uncategorized is the breakdown label for cases without a category.
const Uncategorized = "uncategorized"

// AgentOutput is the partial view of a structured agent response. Every
// section and field is optional so a malformed or truncated response can be
// represented without special cases.
type AgentOutput struct {
	TriageJSON   *TriageJSON   `json:"TRIAGE_JSON,omitempty"`
	DraftReply   *DraftReply   `json:"DRAFT_REPLY,omitempty"`
	InternalNote *InternalNote `json:"INTERNAL_NOTE,omitempty"`

	// Raw is the whole decoded response, including keys and values the
	// typed sections do not keep. Nil when the response was not JSON.
	Raw json.RawMessage `json:"-"`
}

// TriageJSON is the routing decision section.
type TriageJSON struct {
	RequestType      *string  `json:"request_type,omitempty"`
	SupplierName     *string  `json:"supplier_name,omitempty"`
	InvoiceNumber    *string  `json:"invoice_number,omitempty"`
	PONumber         *string  `json:"po_number,omitempty"`
	RouteTeam        *string  `json:"route_team,omitempty"`
	Autosend         *bool    `json:"autosend,omitempty"`
	MissingInfo      []string `json:"missing_info,omitempty"`
	SupportingDocs   []string `json:"supporting_docs,omitempty"`
	Justification    *string  `json:"justification,omitempty"`
	LoopInContacts   []string `json:"loop_in_contacts,omitempty"`
	InternalRequest  []string `json:"internal_request,omitempty"`
	InternalPriority *string  `json:"internal_priority,omitempty"`
	CaseSummary      *string  `json:"case_summary,omitempty"`
}

// DraftReply is the supplier-facing reply section.
type DraftReply struct {
	Subject *string `json:"subject,omitempty"`
	Body    *string `json:"body,omitempty"`
}

// InternalNote is the internal loop-in section.
type InternalNote struct {
	To      []string `json:"to,omitempty"`
	CC      []string `json:"cc,omitempty"`
	Subject *string  `json:"subject,omitempty"`
	Body    *string  `json:"body,omitempty"`
}

// RequestType returns the triage request type and whether it was present.
func (o AgentOutput) RequestType() (string, bool) {
	if o.TriageJSON == nil || o.TriageJSON.RequestType == nil {
		return "", false
	}
	return *o.TriageJSON.RequestType, true
}

// RouteTeam returns the triage route team and whether it was present.
func (o AgentOutput) RouteTeam() (string, bool) {
	if o.TriageJSON == nil || o.TriageJSON.RouteTeam == nil {
		return "", false
	}
	return *o.TriageJSON.RouteTeam, true
}

// Autosend returns the autosend decision and whether it was present.
func (o AgentOutput) Autosend() (bool, bool) {
	if o.TriageJSON == nil || o.TriageJSON.Autosend == nil {
		return false, false
	}
	return *o.TriageJSON.Autosend, true
}

// IsEmpty reports whether no section is present.
func (o AgentOutput) IsEmpty() bool {
	return o.TriageJSON == nil && o.DraftReply == nil && o.InternalNote == nil
}

// String returns a pointer to s. Handy for building outputs in tests and fixtures.
func String(s string) *string {
	return &s
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
