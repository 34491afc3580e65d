package domain

// ConfidenceThreshold is the minimum classifier confidence required to accept an intent as authoritative.
const ConfidenceThreshold = 0.5

// Intent labels. The set is closed: NewIntent rejects anything else.
const (
	IntentSupport IntentLabel = "support"
	IntentSales   IntentLabel = "sales"
	IntentTriage  IntentLabel = "triage"
)

// Labels returns the allowed intent labels in a stable order.
func Labels() []IntentLabel {
	return []IntentLabel{IntentSupport, IntentSales, IntentTriage}
}
