// Package email sends transactional mail through the Brevo HTTP API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/s/courseStore/internal/config"
	"github.com/s/courseStore/internal/logger"
)

const defaultBaseURL = "https://api.brevo.com/v3"

type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Message struct {
	Sender      Address   `json:"sender"`
	To          []Address `json:"to"`
	ReplyTo     *Address  `json:"replyTo,omitempty"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
	TextContent string    `json:"textContent,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

type BrevoClient struct {
	apiKey     string
	baseURL    string
	sender     Address
	httpClient *http.Client
	log        *logger.Logger
}

func NewBrevoClient(cfg config.BrevoConfig, log *logger.Logger) (*BrevoClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing BREVO_API_KEY")
	}
	return &BrevoClient{
		apiKey:     cfg.APIKey,
		baseURL:    defaultBaseURL,
		sender:     Address{Email: cfg.SenderEmail, Name: cfg.SenderName},
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With("client", "BrevoClient"),
	}, nil
}

type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("brevo http %d: %s", e.StatusCode, e.Message)
}

// Send posts the message and returns the provider message id.
func (c *BrevoClient) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Sender.Email == "" {
		msg.Sender = c.sender
	}
	if msg.Sender.Email == "" {
		return "", fmt.Errorf("brevo: sender email required (set BREVO_SENDER_EMAIL)")
	}
	if len(msg.To) == 0 {
		return "", fmt.Errorf("brevo: recipient required")
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/smtp/email", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		he := &HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			he.Message = body.Message
		}
		return "", he
	}

	var result struct {
		MessageID string `json:"messageId"`
	}
	_ = json.Unmarshal(raw, &result)
	c.log.Debug("email sent", "message_id", result.MessageID, "subject", msg.Subject)
	return result.MessageID, nil
}

// QuoteNotification is the data of a consultant quote request.
type QuoteNotification struct {
	FullName          string
	Email             string
	IssueDescription  string
	SuccessCriteria   string
	Urgency           string
	PreferredFormat   string
	FileURLs          []string
	AgreementAccepted bool
}

// QuoteRequestMessage builds the admin notification for a quote request.
func QuoteRequestMessage(q QuoteNotification, adminEmail string) Message {
	var b strings.Builder
	b.WriteString("<h2>New consultant quote request</h2>")
	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>", label, html.EscapeString(value))
	}
	row("Name", q.FullName)
	row("Email", q.Email)
	row("Urgency", q.Urgency)
	row("Preferred format", q.PreferredFormat)
	row("Issue", q.IssueDescription)
	row("Success criteria", q.SuccessCriteria)
	if q.AgreementAccepted {
		row("Agreement", "accepted")
	} else {
		row("Agreement", "not accepted")
	}
	if len(q.FileURLs) > 0 {
		b.WriteString("<p><strong>Files:</strong></p><ul>")
		for _, u := range q.FileURLs {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, html.EscapeString(u), html.EscapeString(u))
		}
		b.WriteString("</ul>")
	}

	return Message{
		To:          []Address{{Email: adminEmail, Name: "Admin"}},
		ReplyTo:     &Address{Email: q.Email, Name: q.FullName},
		Subject:     fmt.Sprintf("New consultant quote request from %s", q.FullName),
		HTMLContent: b.String(),
		TextContent: fmt.Sprintf("%s (%s) requested a quote: %s", q.FullName, q.Email, q.IssueDescription),
		Tags:        []string{"consultant-quote"},
	}
}
