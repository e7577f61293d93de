package reporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-jobalert/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	report := models.NewDiscoveryReport()
	report.Add("Acme", []string{
		"https://boards.greenhouse.io/acme/jobs/1",
		"https://jobs.lever.co/acme/2",
	})
	report.Add("Globex", []string{"https://careers.globex.com/jobs/3"})

	now := time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)
	body, err := RenderReport(report, now)
	require.NoError(t, err)

	expected := `<h3>🚨 New U.S. Job Alerts (Mar 05, 2026 09:30)</h3><br>` +
		`<b>Acme</b><br>` +
		`→ <a href="https://boards.greenhouse.io/acme/jobs/1">https://boards.greenhouse.io/acme/jobs/1</a><br>` +
		`→ <a href="https://jobs.lever.co/acme/2">https://jobs.lever.co/acme/2</a><br>` +
		`<br>` +
		`<b>Globex</b><br>` +
		`→ <a href="https://careers.globex.com/jobs/3">https://careers.globex.com/jobs/3</a><br>` +
		`<br>`
	assert.Equal(t, expected, body)
}

func TestRenderReport_EscapesNames(t *testing.T) {
	report := models.NewDiscoveryReport()
	report.Add("Smith & <Jones>", []string{"https://jobs.lever.co/smith/1"})

	body, err := RenderReport(report, time.Now())
	require.NoError(t, err)

	assert.Contains(t, body, "<b>Smith &amp; &lt;Jones&gt;</b>")
	assert.NotContains(t, body, "<Jones>")
}

func TestMailgunNotifier_Notify(t *testing.T) {
	var (
		gotPath string
		gotUser string
		gotPass string
		gotForm map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"from":    r.PostForm.Get("from"),
			"to":      r.PostForm.Get("to"),
			"subject": r.PostForm.Get("subject"),
			"html":    r.PostForm.Get("html"),
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	m, err := NewMailgunNotifier("secret", "mg.example.com", "", "me@example.com")
	require.NoError(t, err)
	m.BaseURL = srv.URL

	err = m.Notify(context.Background(), Subject, "<b>Acme</b>")
	require.NoError(t, err)

	assert.Equal(t, "/mg.example.com/messages", gotPath)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "key-secret", gotPass)
	assert.Equal(t, map[string]string{
		"from":    "Job Alerts <alerts@mg.example.com>",
		"to":      "me@example.com",
		"subject": Subject,
		"html":    "<b>Acme</b>",
	}, gotForm)
}

func TestMailgunNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusUnauthorized)
	}))
	defer srv.Close()

	m, err := NewMailgunNotifier("key-secret", "mg.example.com", "alerts@example.com", "me@example.com")
	require.NoError(t, err)
	m.BaseURL = srv.URL

	err = m.Notify(context.Background(), Subject, "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailgun error 401")
}

func TestMissingCredentials(t *testing.T) {
	_, err := NewMailgunNotifier("", "mg.example.com", "", "me@example.com")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewMailgunNotifier("secret", "", "", "me@example.com")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewMailgunNotifier("secret", "mg.example.com", "", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewTelegramNotifier("", 42)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewTelegramNotifier("token", 0)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	err = Multi{}.Notify(context.Background(), Subject, "body")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestTelegramHTML(t *testing.T) {
	body := `<h3>🚨 New U.S. Job Alerts (Mar 05, 2026 09:30)</h3><br>` +
		`<b>Acme</b><br>→ <a href="https://jobs.lever.co/acme/2">https://jobs.lever.co/acme/2</a><br><br>`

	got := TelegramHTML("Jobs & more", body)

	expected := "<b>Jobs &amp; more</b>\n\n" +
		"<b>🚨 New U.S. Job Alerts (Mar 05, 2026 09:30)</b>\n" +
		"<b>Acme</b>\n→ <a href=\"https://jobs.lever.co/acme/2\">https://jobs.lever.co/acme/2</a>"
	assert.Equal(t, expected, got)
}

func TestTelegramNotifier_Notify(t *testing.T) {
	var sent map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bottest-token/getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"alerts","username":"alerts_bot"}}`))
		case "/bottest-token/sendMessage":
			require.NoError(t, r.ParseForm())
			sent = map[string]string{
				"chat_id":    r.PostForm.Get("chat_id"),
				"parse_mode": r.PostForm.Get("parse_mode"),
				"text":       r.PostForm.Get("text"),
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	defer srv.Close()

	n, err := NewTelegramNotifierWithEndpoint("test-token", 42, srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	err = n.Notify(context.Background(), "Alert", "<b>Acme</b><br>")
	require.NoError(t, err)

	assert.Equal(t, "42", sent["chat_id"])
	assert.Equal(t, "HTML", sent["parse_mode"])
	assert.Equal(t, "<b>Alert</b>\n\n<b>Acme</b>", sent["text"])
}

type stubNotifier struct {
	name  string
	err   error
	calls int
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Notify(context.Context, string, string) error {
	s.calls++
	return s.err
}

func TestMulti_Notify(t *testing.T) {
	boom := errors.New("boom")
	ok := &stubNotifier{name: "ok"}
	bad := &stubNotifier{name: "bad", err: boom}

	err := Multi{bad, ok}.Notify(context.Background(), Subject, "body")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, bad.calls)

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"ok"}, de.Delivered)
	assert.Equal(t, []string{"bad"}, de.Failed)

	assert.NoError(t, Multi{ok}.Notify(context.Background(), Subject, "body"))
}

// fakeBotAPI serves getMe and records every sendMessage text.
func fakeBotAPI(t *testing.T, sent *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bottest-token/getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"alerts","username":"alerts_bot"}}`))
		case "/bottest-token/sendMessage":
			require.NoError(t, r.ParseForm())
			text := r.PostForm.Get("text")
			if utf16Len(text) > TelegramMaxLength {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: message is too long"}`))
				return
			}
			*sent = append(*sent, text)
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
}

func largeReport() *models.DiscoveryReport {
	report := models.NewDiscoveryReport()
	for i := 1; i <= 12; i++ {
		var links []string
		for j := 1; j <= 5; j++ {
			links = append(links, fmt.Sprintf(
				"https://employer%02d.wd5.myworkdayjobs.com/en-US/External_Careers/job/Austin-TX/Senior-Data-Engineer_R%05d-%d", i, i*100+j, j))
		}
		report.Add(fmt.Sprintf("Employer %02d", i), links)
	}
	return report
}

func TestTelegramNotifier_SplitsLongReport(t *testing.T) {
	var sent []string
	srv := fakeBotAPI(t, &sent)
	defer srv.Close()

	n, err := NewTelegramNotifierWithEndpoint("test-token", 42, srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	body, err := RenderReport(largeReport(), time.Now())
	require.NoError(t, err)
	full := TelegramHTML(Subject, body)
	require.Greater(t, utf16Len(full), TelegramMaxLength)

	require.NoError(t, n.Notify(context.Background(), Subject, body))

	require.Greater(t, len(sent), 1)
	for i, chunk := range sent {
		assert.LessOrEqual(t, utf16Len(chunk), TelegramMaxLength, "chunk %d", i)
		assert.True(t, strings.HasPrefix(chunk, "<b>"), "chunk %d starts mid-entry", i)
	}
	assert.Equal(t, full, strings.Join(sent, "\n\n"))

	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("<b>Employer %02d</b>", i)
		holders := 0
		for _, chunk := range sent {
			if strings.Contains(chunk, name) {
				holders++
			}
		}
		assert.Equal(t, 1, holders, "%s split across messages", name)
	}
}

func TestSplitTelegram(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"<b>A</b>\n\n<b>B</b>"}, SplitTelegram("<b>A</b>\n\n<b>B</b>", 100))
	})

	t.Run("blocks packed greedily", func(t *testing.T) {
		got := SplitTelegram("aaaa\n\nbbbb\n\ncccc", 10)
		assert.Equal(t, []string{"aaaa\n\nbbbb", "cccc"}, got)
	})

	t.Run("oversized block split between lines", func(t *testing.T) {
		got := SplitTelegram("x\n\nline-one\nline-two\nline-three", 12)
		assert.Equal(t, []string{"x", "line-one", "line-two", "line-three"}, got)
	})

	t.Run("astral runes count double", func(t *testing.T) {
		assert.Equal(t, 2, utf16Len("🚨"))
		got := SplitTelegram("🚨🚨\n\n🚨", 5)
		assert.Equal(t, []string{"🚨🚨", "🚨"}, got)
	})
}

func TestChannels(t *testing.T) {
	a := &stubNotifier{name: "mailgun"}
	b := &stubNotifier{name: "telegram"}

	assert.Equal(t, []string{"mailgun"}, Channels(a))
	assert.Equal(t, []string{"mailgun", "telegram"}, Channels(Multi{a, b}))
}
