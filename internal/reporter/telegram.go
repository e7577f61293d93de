package reporter

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMaxLength is the Bot API limit for one message text.
const TelegramMaxLength = 4096

// telegram only accepts a handful of inline tags, so block markup is flattened
var telegramReplacer = strings.NewReplacer(
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
	"<h3>", "<b>",
	"</h3>", "</b>",
)

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewTelegramNotifierWithEndpoint points the bot at a custom Bot API server.
// endpoint is a format string taking the token and the method name.
func NewTelegramNotifierWithEndpoint(token string, chatID int64, endpoint string) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("%w: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID", ErrMissingCredentials)
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Notify sends the report as one or more messages, split at entry
// boundaries so each stays under the Bot API length limit.
func (t *TelegramNotifier) Notify(ctx context.Context, subject, body string) error {
	chunks := SplitTelegram(TelegramHTML(subject, body), TelegramMaxLength)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(t.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send telegram message %d/%d: %w", i+1, len(chunks), err)
		}
	}
	log.Printf("✅ Telegram report sent in %d message(s).", len(chunks))
	return nil
}

// SplitTelegram packs the blank-line separated blocks of text (one per
// employer) into messages of at most limit UTF-16 units. A block that is too
// long on its own is split between lines.
func SplitTelegram(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	add := func(part, sep string) {
		n := utf16Len(part)
		if curLen > 0 && curLen+utf16Len(sep)+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteString(sep)
			curLen += utf16Len(sep)
		}
		cur.WriteString(part)
		curLen += n
	}

	for _, block := range strings.Split(text, "\n\n") {
		if block == "" {
			continue
		}
		if utf16Len(block) <= limit {
			add(block, "\n\n")
			continue
		}
		flush()
		for _, line := range strings.Split(block, "\n") {
			add(line, "\n")
		}
		flush()
	}
	flush()
	return chunks
}

// utf16Len counts the units the Bot API measures message length in.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// TelegramHTML prefixes the subject and rewrites the email body into the
// subset of HTML the Bot API accepts.
func TelegramHTML(subject, body string) string {
	text := telegramReplacer.Replace(body)
	text = strings.TrimRight(text, "\n")
	if subject == "" {
		return text
	}
	return fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(subject), text)
}
