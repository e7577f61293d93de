package reporter

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultMailgunBaseURL = "https://api.mailgun.net/v3"

type MailgunNotifier struct {
	BaseURL string
	domain  string
	apiKey  string
	from    string
	to      string
	client  *http.Client
}

func NewMailgunNotifier(apiKey, domain, from, to string) (*MailgunNotifier, error) {
	if apiKey == "" || domain == "" {
		return nil, fmt.Errorf("%w: set MAILGUN_API_KEY and MAILGUN_DOMAIN", ErrMissingCredentials)
	}
	if to == "" {
		return nil, fmt.Errorf("%w: set TO_EMAIL", ErrMissingCredentials)
	}
	if from == "" {
		from = fmt.Sprintf("Job Alerts <alerts@%s>", domain)
	}

	// some Mailgun accounts hand out keys without the "key-" prefix
	if !strings.HasPrefix(apiKey, "key-") {
		apiKey = "key-" + apiKey
	}

	return &MailgunNotifier{
		BaseURL: DefaultMailgunBaseURL,
		domain:  domain,
		apiKey:  apiKey,
		from:    from,
		to:      to,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (m *MailgunNotifier) Name() string { return "mailgun" }

func (m *MailgunNotifier) Notify(ctx context.Context, subject, body string) error {
	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", m.to)
	form.Set("subject", subject)
	form.Set("html", body)

	endpoint := fmt.Sprintf("%s/%s/messages", strings.TrimRight(m.BaseURL, "/"), m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailgun error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	log.Println("✅ Email sent successfully.")
	return nil
}
