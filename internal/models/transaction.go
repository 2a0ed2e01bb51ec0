package models

// Notification is the IPN payload as the bank sends it. Field names follow the
// bank's PascalCase wire convention; fields we do not recognize are ignored so
// a sender-side revision never breaks ingestion.
type Notification struct {
	TransactionID   string `json:"TransactionId"`
	AcctNo          string `json:"AcctNo"`
	Currency        string `json:"Currency"`
	Amount          Money  `json:"Amount"`
	BookedBalance   Money  `json:"BookedBalance"`
	ClearedBalance  Money  `json:"ClearedBalance"`
	ExchangeRate    Money  `json:"ExchangeRate"`
	Narration       string `json:"Narration"`
	CustMemoLine1   string `json:"CustMemoLine1"`
	CustMemoLine2   string `json:"CustMemoLine2"`
	CustMemoLine3   string `json:"CustMemoLine3"`
	EventType       string `json:"EventType"`
	PaymentRef      string `json:"PaymentRef"`
	PostingDate     string `json:"PostingDate"`
	ValueDate       string `json:"ValueDate"`
	TransactionDate string `json:"TransactionDate"`
}

// TransactionRecord is the row persisted per distinct TransactionId: the raw
// notification plus the derived reference fields. received_at is assigned by
// the database at insert time, so a record's timestamp reflects persistence,
// not parsing.
type TransactionRecord struct {
	Notification

	// FinalReference is the canonical reference extracted from the memo line
	// or narration; empty when no source text was available.
	FinalReference string

	// MobileNumber is the optional local-format phone enrichment recovered
	// from the narration; empty when none was found.
	MobileNumber string
}

// IPNResponse is the fixed response body the bank's downstream parser expects.
// The field names are a contract; do not rename them.
type IPNResponse struct {
	MessageCode   string `json:"MessageCode"`
	Message       string `json:"Message"`
	TransactionID string `json:"TransactionId,omitempty"`
	Reference     string `json:"Reference,omitempty"`
}
