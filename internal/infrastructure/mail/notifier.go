package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"EnergyDigest/internal/config"
	"EnergyDigest/internal/digest"
	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/ports"
)

const (
	senderName  = "Energy Security Digest"
	dialTimeout = 30 * time.Second
)

// Message is a fully rendered mail ready for SMTP.
type Message struct {
	From       string
	Recipients []string
	Body       []byte
}

// Sender delivers a message. The default implementation speaks SMTP.
type Sender func(ctx context.Context, msg Message) error

// Notifier mails the digest as multipart/alternative (plain text + HTML).
type Notifier struct {
	cfg     config.MailConfig
	subject string
	send    Sender
	now     func() time.Time
	logger  *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// Option customizes the notifier.
type Option func(*Notifier)

// WithSender replaces SMTP delivery.
func WithSender(send Sender) Option {
	return func(n *Notifier) {
		if send != nil {
			n.send = send
		}
	}
}

// NewNotifier registers SMTP settings and the subject prefix.
func NewNotifier(cfg config.MailConfig, subject string, logger *slog.Logger, opts ...Option) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := &Notifier{cfg: cfg, subject: subject, now: time.Now, logger: logger}
	n.send = n.sendSMTP
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// PublishDigest renders and mails the digest. An empty digest is not sent.
func (n *Notifier) PublishDigest(ctx context.Context, d domain.Digest) error {
	if n.cfg.Host == "" || n.cfg.From == "" || len(n.cfg.Recipients) == 0 {
		return errors.New("mail notifier misconfigured")
	}
	if d.Total() == 0 {
		n.logger.Info("no articles, skipping email")
		return nil
	}

	htmlBody, err := digest.RenderHTML(d)
	if err != nil {
		return err
	}
	body, err := BuildMessage(Header{
		From:    n.cfg.From,
		To:      n.cfg.Recipients,
		Subject: digest.Subject(n.subject, d.Date),
		Date:    n.now(),
	}, digest.RenderText(d), htmlBody)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	if err := n.send(ctx, Message{From: n.cfg.From, Recipients: n.cfg.Recipients, Body: body}); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	n.logger.Info("email sent", "recipients", len(n.cfg.Recipients), "articles", d.Total())
	return nil
}

// Header carries the envelope-facing headers of a digest mail.
type Header struct {
	From    string
	To      []string
	Subject string
	Date    time.Time
}

// BuildMessage assembles a multipart/alternative message with quoted-printable
// text and HTML parts.
func BuildMessage(h Header, text, html string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := writePart(mw, "text/plain; charset=UTF-8", text); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html; charset=UTF-8", html); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var msg bytes.Buffer
	from := mime.QEncoding.Encode("UTF-8", senderName) + " <" + h.From + ">"
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(h.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", h.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", h.Date.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, content string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return fmt.Errorf("encode part: %w", err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("flush part: %w", err)
	}
	return nil
}

// sendSMTP dials with the context, upgrades with STARTTLS when offered and
// authenticates with PLAIN when credentials are set.
func (n *Notifier) sendSMTP(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if n.cfg.Username != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range msg.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg.Body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish data: %w", err)
	}
	return client.Quit()
}
