// Package natsbus publishes notifications to a NATS subject so other
// services can react to newly detected models.
package natsbus

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/logging"
	"github.com/agentstation/modelwatch/pkg/notify"
)

// DefaultSubject is used when the target names none.
const DefaultSubject = "modelwatch.new_models"

// Conn is the subset of *nats.Conn used here.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Event is the published message body.
type Event struct {
	DetectedAt time.Time      `json:"detected_at"`
	Total      int            `json:"total"`
	NewModels  notify.Payload `json:"new_models"`
}

// Notifier publishes one Event per notification.
type Notifier struct {
	conn    Conn
	subject string
	now     func() time.Time
}

var _ notify.Notifier = (*Notifier)(nil)

// ParseTarget splits nats://host:port/subject into a server URL and subject.
func ParseTarget(raw string) (serverURL, subject string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "", errors.NewConfigError("nats", "invalid target "+raw, err)
	}
	subject = strings.Trim(u.Path, "/")
	subject = strings.ReplaceAll(subject, "/", ".")
	if subject == "" {
		subject = DefaultSubject
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String(), subject, nil
}

// Dial connects to the server named by target.
func Dial(target string) (*Notifier, error) {
	serverURL, subject, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	conn, err := nats.Connect(serverURL, nats.Name("modelwatch"))
	if err != nil {
		return nil, errors.WrapResource("connect", "nats", serverURL, err)
	}
	return New(conn, subject), nil
}

// New wraps an established connection.
func New(conn Conn, subject string) *Notifier {
	return &Notifier{conn: conn, subject: subject, now: time.Now}
}

// Subject returns the subject published to.
func (n *Notifier) Subject() string { return n.subject }

// Notify implements notify.Notifier.
func (n *Notifier) Notify(ctx context.Context, payload notify.Payload) error {
	data, err := json.Marshal(Event{
		DetectedAt: n.now().UTC(),
		Total:      payload.Total(),
		NewModels:  payload,
	})
	if err != nil {
		return errors.NewNotificationError(n.subject, err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return errors.NewNotificationError(n.subject, err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return errors.NewNotificationError(n.subject, err)
	}

	logging.Ctx(ctx).Info().
		Str("subject", n.subject).
		Int("new_count", payload.Total()).
		Msg("Published new model event")
	return nil
}

// Close closes the connection.
func (n *Notifier) Close() error {
	n.conn.Close()
	return nil
}
