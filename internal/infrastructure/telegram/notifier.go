package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"

	"EnergyDigest/internal/digest"
	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/ports"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	// MaxMessageLength is Telegram's limit, counted in UTF-16 code units.
	MaxMessageLength = 4096
)

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	subject  string
	baseURL  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// Option customizes the notifier.
type Option func(*Notifier)

// WithBaseURL points the notifier at another Bot API host.
func WithBaseURL(base string) Option {
	return func(n *Notifier) {
		if base != "" {
			n.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewNotifier registers bot token, chat identifier and subject prefix.
func NewNotifier(botToken, chatID, subject string, opts ...Option) *Notifier {
	n := &Notifier{
		botToken: botToken,
		chatID:   chatID,
		subject:  subject,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// PublishDigest posts the digest as one or more plain-text messages.
func (n *Notifier) PublishDigest(ctx context.Context, d domain.Digest) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if d.Total() == 0 {
		return nil
	}

	for i, chunk := range Split(Format(n.subject, d), MaxMessageLength) {
		if err := n.send(ctx, chunk); err != nil {
			return fmt.Errorf("message %d: %w", i+1, err)
		}
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// Format renders the digest as plain text for chat delivery.
func Format(subject string, d domain.Digest) string {
	var b strings.Builder
	b.WriteString(digest.Subject(subject, d.Date))
	fmt.Fprintf(&b, "\n%d articles\n", d.Total())
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "\n%s %s (%d)\n", digest.Icon(s), s.Topic, len(s.Articles))
		for _, a := range s.Articles {
			fmt.Fprintf(&b, "• %s (%s)\n", a.Title, a.Source)
			if a.URL != "" {
				b.WriteString(a.URL + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Split breaks text into messages of at most limit UTF-16 units, preferring
// line boundaries. A single oversized line is split by runes.
func Split(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf16Len(text) <= limit {
		return []string{text}
	}

	var (
		out     []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if chunk := strings.TrimRight(current.String(), "\n"); chunk != "" {
			out = append(out, chunk)
		}
		current.Reset()
		size = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if n > limit {
			flush()
			for _, piece := range splitRunes(line, limit) {
				if piece = strings.TrimRight(piece, "\n"); piece != "" {
					out = append(out, piece)
				}
			}
			continue
		}
		if size+n > limit {
			flush()
		}
		current.WriteString(line)
		size += n
	}
	flush()
	return out
}

func splitRunes(s string, limit int) []string {
	var (
		out   []string
		start int
		size  int
	)
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if size+w > limit {
			out = append(out, s[start:i])
			start, size = i, 0
		}
		size += w
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}
