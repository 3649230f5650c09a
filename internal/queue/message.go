package queue

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"docvault-backend/internal/intake"
)

// Attachment is a file carried by a queued inbound email. Content is base64
// so the payload survives JSON transport.
type Attachment struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

// Message is the inbound email payload sent to the intake worker.
type Message struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	Attachments []Attachment `json:"attachments"`
	EnqueuedAt  string       `json:"enqueuedAt"`
	Version     int          `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// FromInboundEmail converts a routed email into a queue message.
func FromInboundEmail(email intake.InboundEmail, enqueuedAt string) Message {
	msg := Message{
		From:       email.FromAddress,
		To:         email.ToAddresses,
		Subject:    email.Subject,
		EnqueuedAt: enqueuedAt,
		Version:    1,
	}
	for _, att := range email.Attachments {
		msg.Attachments = append(msg.Attachments, Attachment{
			FileName: att.FileName,
			MimeType: att.MimeType,
			Content:  base64.StdEncoding.EncodeToString(att.Data),
		})
	}
	return msg
}

// ToInboundEmail converts a queue message back into a routable email.
func (m Message) ToInboundEmail() (intake.InboundEmail, error) {
	email := intake.InboundEmail{
		FromAddress: m.From,
		ToAddresses: m.To,
		Subject:     m.Subject,
	}
	for _, att := range m.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			return intake.InboundEmail{}, fmt.Errorf("decode attachment %s: %w", att.FileName, err)
		}
		email.Attachments = append(email.Attachments, intake.Attachment{
			FileName: att.FileName,
			MimeType: att.MimeType,
			Data:     data,
		})
	}
	return email, nil
}
