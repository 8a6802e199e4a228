package agent

import (
	"encoding/json"
	"strings"

	"github.com/giantswarm/triage-eval/internal/triage"
)

type object map[string]json.RawMessage

// Parse decodes raw agent text into a partial AgentOutput. Sections and
// fields that are missing or have the wrong shape are left absent from the
// typed view; Raw still carries them. The bool result is false when raw is
// not a JSON object, in which case the typed view is empty.
func Parse(raw string) (triage.AgentOutput, bool) {
	var out triage.AgentOutput

	text := []byte(strings.TrimSpace(raw))
	if !json.Valid(text) || string(text) == "null" {
		return out, false
	}
	out.Raw = json.RawMessage(text)

	var root object
	if err := json.Unmarshal(text, &root); err != nil || root == nil {
		return out, false
	}

	if sec, ok := section(root, "TRIAGE_JSON"); ok {
		out.TriageJSON = &triage.TriageJSON{
			RequestType:      stringField(sec, "request_type"),
			SupplierName:     stringField(sec, "supplier_name"),
			InvoiceNumber:    stringField(sec, "invoice_number"),
			PONumber:         stringField(sec, "po_number"),
			RouteTeam:        stringField(sec, "route_team"),
			Autosend:         boolField(sec, "autosend"),
			MissingInfo:      listField(sec, "missing_info"),
			SupportingDocs:   listField(sec, "supporting_docs"),
			Justification:    stringField(sec, "justification"),
			LoopInContacts:   listField(sec, "loop_in_contacts"),
			InternalRequest:  listField(sec, "internal_request"),
			InternalPriority: stringField(sec, "internal_priority"),
			CaseSummary:      stringField(sec, "case_summary"),
		}
	}
	if sec, ok := section(root, "DRAFT_REPLY"); ok {
		out.DraftReply = &triage.DraftReply{
			Subject: stringField(sec, "subject"),
			Body:    stringField(sec, "body"),
		}
	}
	if sec, ok := section(root, "INTERNAL_NOTE"); ok {
		out.InternalNote = &triage.InternalNote{
			To:      listField(sec, "to"),
			CC:      listField(sec, "cc"),
			Subject: stringField(sec, "subject"),
			Body:    stringField(sec, "body"),
		}
	}

	return out, true
}

func section(root object, key string) (object, bool) {
	raw, ok := root[key]
	if !ok {
		return nil, false
	}
	var sec object
	if err := json.Unmarshal(raw, &sec); err != nil || sec == nil {
		return nil, false
	}
	return sec, true
}

func stringField(sec object, key string) *string {
	var v *string
	decodeField(sec, key, &v)
	return v
}

func boolField(sec object, key string) *bool {
	var v *bool
	decodeField(sec, key, &v)
	return v
}

func listField(sec object, key string) []string {
	var v []string
	decodeField(sec, key, &v)
	return v
}

// decodeField leaves dst untouched when the field is absent or mistyped.
func decodeField[T any](sec object, key string, dst *T) {
	raw, ok := sec[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}
