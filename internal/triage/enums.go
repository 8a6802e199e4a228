package triage

import "slices"

// Request types accepted in TRIAGE_JSON.request_type.
const (
	RequestInvoiceReceivedCheck = "invoice_received_check"
	RequestPaymentStatus        = "payment_status"
	RequestMissingInvoice       = "missing_invoice"
	RequestReconciliation       = "reconciliation"
	RequestTechnicalUploadIssue = "technical_upload_issue"
	RequestLegalTerms           = "legal_terms"
	RequestOther                = "other"
	RequestSpam                 = "spam"
)

// Route teams accepted in TRIAGE_JSON.route_team.
const (
	TeamAP                 = "AP"
	TeamSupplierOnboarding = "SupplierOnboarding"
	TeamIT                 = "IT"
	TeamSupplyChain        = "SupplyChain"
	TeamLegal              = "Legal"
	TeamUnknown            = "Unknown"
)

// Internal priorities. The harness never scores on priority.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// RequestTypes lists the closed request_type enumeration in schema order.
var RequestTypes = []string{
	RequestInvoiceReceivedCheck,
	RequestPaymentStatus,
	RequestMissingInvoice,
	RequestReconciliation,
	RequestTechnicalUploadIssue,
	RequestLegalTerms,
	RequestOther,
	RequestSpam,
}

// RouteTeams lists the closed route_team enumeration in schema order.
var RouteTeams = []string{
	TeamAP,
	TeamSupplierOnboarding,
	TeamIT,
	TeamSupplyChain,
	TeamLegal,
	TeamUnknown,
}

// Priorities lists the closed internal_priority enumeration.
var Priorities = []string{PriorityLow, PriorityNormal, PriorityHigh}

// IsRequestType reports whether s is a known request type.
func IsRequestType(s string) bool {
	return slices.Contains(RequestTypes, s)
}

// IsRouteTeam reports whether s is a known route team.
func IsRouteTeam(s string) bool {
	return slices.Contains(RouteTeams, s)
}

