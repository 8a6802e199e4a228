package agent

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/giantswarm/triage-eval/internal/triage"
)

// SchemaName names the response schema sent to the structured-output service.
const SchemaName = "triage_response"

// ResponseSchema returns the strict, closed schema for a triage response.
// Every field is required and no additional properties are allowed.
func ResponseSchema() *jsonschema.Definition {
	str := jsonschema.Definition{Type: jsonschema.String}
	strList := jsonschema.Definition{Type: jsonschema.Array, Items: &str}

	return &jsonschema.Definition{
		Type:                 jsonschema.Object,
		AdditionalProperties: false,
		Required:             []string{"TRIAGE_JSON", "DRAFT_REPLY", "INTERNAL_NOTE"},
		Properties: map[string]jsonschema.Definition{
			"TRIAGE_JSON": {
				Type:                 jsonschema.Object,
				AdditionalProperties: false,
				Required: []string{
					"request_type", "supplier_name", "invoice_number", "po_number",
					"route_team", "autosend", "missing_info", "supporting_docs",
					"justification", "loop_in_contacts", "internal_request",
					"internal_priority", "case_summary",
				},
				Properties: map[string]jsonschema.Definition{
					"request_type":      {Type: jsonschema.String, Enum: triage.RequestTypes},
					"supplier_name":     str,
					"invoice_number":    str,
					"po_number":         str,
					"route_team":        {Type: jsonschema.String, Enum: triage.RouteTeams},
					"autosend":          {Type: jsonschema.Boolean},
					"missing_info":      strList,
					"supporting_docs":   strList,
					"justification":     str,
					"loop_in_contacts":  strList,
					"internal_request":  strList,
					"internal_priority": {Type: jsonschema.String, Enum: triage.Priorities},
					"case_summary":      str,
				},
			},
			"DRAFT_REPLY": {
				Type:                 jsonschema.Object,
				AdditionalProperties: false,
				Required:             []string{"subject", "body"},
				Properties: map[string]jsonschema.Definition{
					"subject": str,
					"body":    str,
				},
			},
			"INTERNAL_NOTE": {
				Type:                 jsonschema.Object,
				AdditionalProperties: false,
				Required:             []string{"to", "cc", "subject", "body"},
				Properties: map[string]jsonschema.Definition{
					"to":      strList,
					"cc":      strList,
					"subject": str,
					"body":    str,
				},
			},
		},
	}
}
