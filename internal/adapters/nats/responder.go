package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/usecases"
	"github.com/samirrijal/transitcat/internal/pkg/metrics"
)

// Answerer answers statistics requests. usecases.RequestService satisfies it.
type Answerer interface {
	Answer(ctx context.Context, req domain.StatRequest) domain.Response
	Process(ctx context.Context, reqs []domain.StatRequest) []domain.Response
}

// Responder serves statistics over NATS request-reply.
type Responder struct {
	conn   *nats.Conn
	prefix string
	svc    Answerer
	subs   []*nats.Subscription
}

// NewResponder creates a Responder. conn may be nil when only Handle is used.
func NewResponder(conn *nats.Conn, prefix string, svc Answerer) *Responder {
	return &Responder{conn: conn, prefix: prefix, svc: svc}
}

// Start subscribes to every request subject in the shared queue group.
func (r *Responder) Start(ctx context.Context) error {
	suffixes := []string{SuffixStats, SuffixStop, SuffixItinerary, SuffixMap, SuffixBatch}
	for _, suffix := range suffixes {
		subject := Subject(r.prefix, suffix)
		sub, err := r.conn.QueueSubscribe(subject, QueueGroup, func(msg *nats.Msg) {
			r.serve(ctx, msg)
		})
		if err != nil {
			r.Close()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		r.subs = append(r.subs, sub)
	}
	return nil
}

func (r *Responder) serve(ctx context.Context, msg *nats.Msg) {
	reply, err := r.Handle(ctx, msg.Subject, msg.Data)
	status := "ok"
	if err != nil {
		status = "invalid"
		slog.WarnContext(ctx, "nats request rejected", "subject", msg.Subject, "error", err)
	}
	metrics.NATSRequests.WithLabelValues(strings.TrimPrefix(msg.Subject, r.prefix+"."), status).Inc()

	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(reply); err != nil {
		slog.ErrorContext(ctx, "nats respond failed", "subject", msg.Subject, "error", err)
	}
}

// Handle decodes one request body for subject and returns the encoded reply.
// A malformed body still yields a reply carrying an error response; the
// returned error only reports why.
func (r *Responder) Handle(ctx context.Context, subject string, data []byte) ([]byte, error) {
	suffix, ok := strings.CutPrefix(subject, r.prefix+".")
	if !ok {
		return invalid(), fmt.Errorf("subject %q outside prefix %q", subject, r.prefix)
	}

	if suffix == SuffixBatch {
		var reqs []domain.StatRequest
		if err := json.Unmarshal(data, &reqs); err != nil {
			return invalid(), fmt.Errorf("decode batch: %w", err)
		}
		if len(reqs) > usecases.MaxBatch {
			return invalid(), fmt.Errorf("batch of %d exceeds %d requests", len(reqs), usecases.MaxBatch)
		}
		return encode(r.svc.Process(ctx, reqs))
	}

	var req domain.StatRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return invalid(), fmt.Errorf("decode request: %w", err)
		}
	}
	switch suffix {
	case SuffixStats:
		req.Type = domain.RequestBus
	case SuffixStop:
		req.Type = domain.RequestStop
	case SuffixItinerary:
		req.Type = domain.RequestRoute
	case SuffixMap:
		req.Type = domain.RequestMap
	default:
		return encode(domain.ErrorResponse{RequestID: req.ID, ErrorMessage: domain.MsgUnknownType})
	}
	return encode(r.svc.Answer(ctx, req))
}

// Close unsubscribes every subscription.
func (r *Responder) Close() {
	for _, sub := range r.subs {
		_ = sub.Unsubscribe()
	}
	r.subs = nil
}

func invalid() []byte {
	b, _ := json.Marshal(domain.ErrorResponse{ErrorMessage: domain.MsgInvalidRequest})
	return b
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return invalid(), err
	}
	return b, nil
}
