// Package graph implements a Provider that sends emails via the Microsoft Graph API.
package graph

import (
	"encoding/base64"

	"github.com/dspinellis/ai-repo-feedback/internal/email"
)

// sendMailRequest is the top-level request body for the Graph API sendMail endpoint.
type sendMailRequest struct {
	Message sendMailMessage `json:"message"`
}

// sendMailMessage represents the message portion of a sendMail request.
type sendMailMessage struct {
	Subject      string            `json:"subject"`
	Body         messageBody       `json:"body"`
	From         *recipient        `json:"from,omitempty"`
	ToRecipients []recipient       `json:"toRecipients"`
	CcRecipients []recipient       `json:"ccRecipients,omitempty"`
	Attachments  []graphAttachment `json:"attachments,omitempty"`
}

// messageBody represents the body of an email message.
type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// recipient represents an email recipient.
type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

// emailAddress represents an email address, optionally with a display name.
type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// graphAttachment represents a file attachment in a Graph API request.
type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

// tokenResponse represents the OAuth2 token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// graphErrorResponse represents an error response from the Graph API.
type graphErrorResponse struct {
	Error graphError `json:"error"`
}

// graphError represents the error detail in a Graph API error response.
type graphError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// buildSendMailRequest converts an email.Message into a Graph API
// sendMail request body. Display names travel with their addresses;
// attachments are generically typed binary files.
func buildSendMailRequest(msg *email.Message) *sendMailRequest {
	contentType := "text"
	if msg.ContentType == "html" {
		contentType = "html"
	}

	var from *recipient
	if msg.FromEmail != "" {
		from = &recipient{
			EmailAddress: emailAddress{Address: msg.FromEmail, Name: msg.FromName},
		}
	}

	toRecipients := []recipient{
		{EmailAddress: emailAddress{Address: msg.ToEmail, Name: msg.ToName}},
	}

	ccRecipients := make([]recipient, 0, len(msg.CcEmails))
	for i, addr := range msg.CcEmails {
		name := ""
		if i < len(msg.CcNames) {
			name = msg.CcNames[i]
		}
		ccRecipients = append(ccRecipients, recipient{
			EmailAddress: emailAddress{Address: addr, Name: name},
		})
	}

	attachments := make([]graphAttachment, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         att.Filename,
			ContentType:  "application/octet-stream",
			ContentBytes: base64.StdEncoding.EncodeToString(att.Content),
		})
	}

	return &sendMailRequest{
		Message: sendMailMessage{
			Subject:      msg.Subject,
			Body:         messageBody{ContentType: contentType, Content: msg.Body},
			From:         from,
			ToRecipients: toRecipients,
			CcRecipients: ccRecipients,
			Attachments:  attachments,
		},
	}
}
