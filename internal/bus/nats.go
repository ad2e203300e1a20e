package bus

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/mossy-p/chat-gateway/internal/metrics"
)

// Idle per-room publish queues are torn down after this long.
const queueIdleTimeout = time.Minute

// Partition keys are caller-supplied room and user ids, but NATS gives
// subject tokens meaning: a "." splits tokens and would push the key out of
// the single-token "*" subscription, silently breaking cross-instance
// fanout for that room. Percent-escape the delimiter and wildcard
// characters so any key stays one token.
var keyEscaper = strings.NewReplacer(
	"%", "%25",
	".", "%2E",
	"*", "%2A",
	">", "%3E",
	" ", "%20",
)

func escapeKey(key string) string { return keyEscaper.Replace(key) }

func unescapeKey(token string) string {
	key, err := url.PathUnescape(token)
	if err != nil {
		return token
	}
	return key
}

// NATSBus maps topics to subject prefixes: a payload for room R on topic T
// is published to "T.R". NATS preserves publish order per subject from a
// single connection, which is exactly the per-room ordering the protocol
// requires.
type NATSBus struct {
	conn      *nats.Conn
	origin    string
	queueSize int
	log       *slog.Logger

	mu     sync.Mutex
	queues map[string]chan []byte
	subs   []*nats.Subscription
}

// ConnectNATS dials the bus. Reconnection is left to the client library;
// the caller decides whether a failed initial connect is fatal or a reason
// to degrade to local-only fanout.
func ConnectNATS(url, name string, queueSize int, log *slog.Logger) (*NATSBus, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSBus{
		conn:      conn,
		origin:    uuid.New().String(),
		queueSize: queueSize,
		log:       log,
		queues:    make(map[string]chan []byte),
	}, nil
}

func (b *NATSBus) Origin() string { return b.origin }

// Publish enqueues the payload on the room's bounded queue. A full queue
// sheds its oldest entry rather than blocking the caller.
func (b *NATSBus) Publish(topic, key string, data []byte) {
	env, err := json.Marshal(Envelope{Origin: b.origin, Data: data})
	if err != nil {
		return
	}
	subject := topic + "." + escapeKey(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[subject]
	if !ok {
		q = make(chan []byte, b.queueSize)
		b.queues[subject] = q
		go b.drain(subject, q)
	}

	select {
	case q <- env:
	default:
		select {
		case <-q:
			metrics.BusSheds.WithLabelValues(topic).Inc()
		default:
		}
		select {
		case q <- env:
		default:
		}
	}
	metrics.BusPublishes.WithLabelValues(topic).Inc()
}

// drain owns one subject's queue, keeping that room's publishes in order.
func (b *NATSBus) drain(subject string, q chan []byte) {
	idle := time.NewTimer(queueIdleTimeout)
	defer idle.Stop()

	for {
		select {
		case data := <-q:
			if err := b.conn.Publish(subject, data); err != nil {
				b.log.Warn("bus publish failed", "subject", subject, "error", err)
			}
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(queueIdleTimeout)
		case <-idle.C:
			b.mu.Lock()
			if len(q) == 0 {
				delete(b.queues, subject)
				b.mu.Unlock()
				return
			}
			b.mu.Unlock()
			idle.Reset(queueIdleTimeout)
		}
	}
}

// Subscribe delivers every payload published under the topic, from this
// instance and every other one.
func (b *NATSBus) Subscribe(topic string, h Handler) error {
	sub, err := b.conn.Subscribe(topic+".*", func(msg *nats.Msg) {
		key := unescapeKey(strings.TrimPrefix(msg.Subject, topic+"."))
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			b.log.Warn("dropping malformed bus payload", "subject", msg.Subject, "error", err)
			return
		}
		h(key, env)
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return nil
}

func (b *NATSBus) Close() {
	b.conn.Drain()
}
