// Package reporter renders a discovery report and delivers it to the
// configured channels (Mailgun email, Telegram).
package reporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"go-jobalert/internal/models"
)

const Subject = "🚨 New Entry-Level U.S. Job Posted"

// ErrMissingCredentials is returned when a notifier cannot be built from
// the configured credentials.
var ErrMissingCredentials = errors.New("notifier credentials missing")

type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
	Name() string
}

// DeliveryError reports a fan-out where at least one channel failed.
// Delivered lists the channels that did receive the message.
type DeliveryError struct {
	Delivered []string
	Failed    []string
	Err       error
}

func (e *DeliveryError) Error() string {
	return e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

// Notify returns a *DeliveryError when any notifier fails.
func (m Multi) Notify(ctx context.Context, subject, body string) error {
	if len(m) == 0 {
		return ErrMissingCredentials
	}

	var delivered, failed []string
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, subject, body); err != nil {
			failed = append(failed, n.Name())
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		delivered = append(delivered, n.Name())
	}
	if len(errs) == 0 {
		return nil
	}
	return &DeliveryError{Delivered: delivered, Failed: failed, Err: errors.Join(errs...)}
}

// Channels lists the names of the notifiers behind n, expanding a Multi.
func Channels(n Notifier) []string {
	m, ok := n.(Multi)
	if !ok {
		return []string{n.Name()}
	}
	names := make([]string, 0, len(m))
	for _, c := range m {
		names = append(names, c.Name())
	}
	return names
}

var reportTmpl = template.Must(template.New("report").Parse(
	`<h3>🚨 New U.S. Job Alerts ({{.Stamp}})</h3><br>` +
		`{{range .Entries}}<b>{{.Employer}}</b><br>` +
		`{{range .Links}}→ <a href="{{.}}">{{.}}</a><br>{{end}}<br>{{end}}`,
))

// RenderReport renders the HTML message body. Entries keep report order.
func RenderReport(report *models.DiscoveryReport, now time.Time) (string, error) {
	data := struct {
		Stamp   string
		Entries []models.ReportEntry
	}{
		Stamp:   now.Format("Jan 02, 2006 15:04"),
		Entries: report.Entries,
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}
