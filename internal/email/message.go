// Package email defines the outgoing message model and its MIME serialization.
package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
)

// Message represents one outgoing email, assembled from CLI arguments
// plus the body read from stdin. It lives for a single send and is
// never persisted.
type Message struct {
	FromEmail string
	FromName  string
	ToEmail   string
	ToName    string
	Subject   string

	// CcEmails and CcNames are paired by position. CcNames may be
	// empty, in which case CC entries carry bare addresses; if any
	// names are given the counts must match (see Validate).
	CcEmails []string
	CcNames  []string

	// ContentType selects the MIME subtype of the body part:
	// "plain" or "html". Empty means "plain".
	ContentType string
	Body        string

	Attachments []Attachment
}

// Attachment represents a file attached to an outgoing message.
// Filename is emitted verbatim in the Content-Disposition header;
// callers must supply safe names.
type Attachment struct {
	Filename string
	Content  []byte
}

// Validate checks the CC pairing invariant: when any CC names are
// supplied, there must be exactly one name per CC address.
func (m *Message) Validate() error {
	if len(m.CcNames) > 0 && len(m.CcNames) != len(m.CcEmails) {
		return fmt.Errorf("the number of CC emails (%d) and CC names (%d) must match",
			len(m.CcEmails), len(m.CcNames))
	}
	return nil
}

// Envelope returns the SMTP envelope recipient list: the From and To
// addresses. CC addresses appear in the Cc header only and are not
// part of the envelope, so whether CC recipients receive the message
// depends on the server.
func (m *Message) Envelope() []string {
	return []string{m.FromEmail, m.ToEmail}
}

// Bytes serializes the message as a multipart/mixed MIME document:
// headers, one text body part, and one base64 part per attachment.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", formatAddress(m.FromName, m.FromEmail))
	fmt.Fprintf(&buf, "To: %s\r\n", formatAddress(m.ToName, m.ToEmail))
	// The Cc header is always present; an empty CC list yields an
	// empty value, not an absent header.
	fmt.Fprintf(&buf, "Cc: %s\r\n", m.ccHeader())
	fmt.Fprintf(&buf, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	subtype := m.ContentType
	if subtype == "" {
		subtype = "plain"
	}

	bodyHeader := make(textproto.MIMEHeader)
	bodyHeader.Set("Content-Type", fmt.Sprintf("text/%s; charset=UTF-8", subtype))
	part, err := writer.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	part.Write([]byte(m.Body))

	for _, att := range m.Attachments {
		attHeader := make(textproto.MIMEHeader)
		attHeader.Set("Content-Type", "application/octet-stream")
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%s", att.Filename))

		part, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		part.Write([]byte(encodeBase64WithLineBreaks(att.Content)))
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}
	return buf.Bytes(), nil
}

// AttachFile reads the file at path and returns it as an Attachment.
// The path string is used verbatim as the attachment filename,
// matching the CLI contract.
func AttachFile(path string) (Attachment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	return Attachment{Filename: path, Content: content}, nil
}

// ccHeader joins the CC name/address pairs into a single header value.
// A missing name yields the bare address.
func (m *Message) ccHeader() string {
	pairs := make([]string, 0, len(m.CcEmails))
	for i, addr := range m.CcEmails {
		name := ""
		if i < len(m.CcNames) {
			name = m.CcNames[i]
		}
		pairs = append(pairs, formatAddress(name, addr))
	}
	return strings.Join(pairs, ",")
}

// formatAddress renders a display name and address as a header value.
// Non-ASCII names are Q-encoded per RFC 2047 so they survive transport.
func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), addr)
}

// encodeBase64WithLineBreaks encodes bytes to base64 with 76-character
// line breaks per RFC 2045.
func encodeBase64WithLineBreaks(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, "\r\n")
}
