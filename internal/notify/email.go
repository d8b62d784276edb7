package notify

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const defaultSMTPPort = 25

var _ Notifier = (*Emailer)(nil)

type SMTPConfig struct {
	SenderName  string
	SenderEmail string
	Host        string // host or host:port
	Username    string
	Password    string
}

// Dialer opens an SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// Emailer sends alerts over a single SMTP connection that is opened on
// first use and shared by all callers. Sends are serialized on mu.
type Emailer struct {
	log        *zap.Logger
	dialer     Dialer
	senderName string
	sender     string

	mu   sync.Mutex
	conn gomail.SendCloser
}

func NewEmailer(cfg SMTPConfig, log *zap.Logger) (*Emailer, error) {
	host, port, err := splitHostPort(cfg.Host)
	if err != nil {
		return nil, err
	}
	return NewEmailerWithDialer(cfg, gomail.NewDialer(host, port, cfg.Username, cfg.Password), log), nil
}

func NewEmailerWithDialer(cfg SMTPConfig, d Dialer, log *zap.Logger) *Emailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emailer{
		log:        log.With(zap.String("component", "emailer")),
		dialer:     d,
		senderName: cfg.SenderName,
		sender:     cfg.SenderEmail,
	}
}

func (e *Emailer) Notify(ctx context.Context, to, subject, body string) {
	if err := e.send(ctx, to, subject, body); err != nil {
		e.log.Error("notify_failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return
	}
	e.log.Debug("notify_sent", zap.String("to", to), zap.String("subject", subject))
}

func (e *Emailer) send(ctx context.Context, to, subject, body string) error {
	m := e.message(to, subject, body)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	reused := e.conn != nil
	if err := e.sendOnce(m); err != nil {
		if !reused {
			return err
		}
		// relays drop idle sessions; retry once on a fresh one
		e.log.Debug("smtp_session_stale", zap.Error(err))
		return e.sendOnce(m)
	}
	return nil
}

// sendOnce sends m on the cached session, dialing one if needed. On failure
// the session is closed and forgotten. Callers hold mu.
func (e *Emailer) sendOnce(m *gomail.Message) error {
	if e.conn == nil {
		c, err := e.dialer.Dial()
		if err != nil {
			return fmt.Errorf("dial smtp: %w", err)
		}
		e.conn = c
	}
	if err := gomail.Send(e.conn, m); err != nil {
		_ = e.conn.Close()
		e.conn = nil
		return err
	}
	return nil
}

func (e *Emailer) message(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.sender, e.senderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// Close ends the shared SMTP session, if one is open.
func (e *Emailer) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

func splitHostPort(hostport string) (string, int, error) {
	if hostport == "" {
		return "", 0, fmt.Errorf("smtp host is empty")
	}
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		// no port given
		return hostport, defaultSMTPPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid smtp port %q", portStr)
	}
	return host, port, nil
}
