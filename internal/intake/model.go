package intake

import "time"

// IntakeEmail is a generated address that routes inbound mail into an
// organization's documents. An address with no allowed origins accepts mail
// from nobody.
type IntakeEmail struct {
	ID             string
	OrganizationID string
	EmailAddress   string
	IsEnabled      bool
	AllowedOrigins []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Attachment is a file carried by an inbound email.
type Attachment struct {
	FileName string
	MimeType string
	Data     []byte
}

// InboundEmail is a received email to be routed into document ingestion.
type InboundEmail struct {
	FromAddress string
	ToAddresses []string
	Subject     string
	Attachments []Attachment
}
