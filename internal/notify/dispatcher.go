package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"visit-service/internal/metrics"
	"visit-service/internal/model"
)

type Dispatcher struct {
	gateways []Gateway
	timeout  time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewDispatcher(log zerolog.Logger, timeout time.Duration, gateways ...Gateway) *Dispatcher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Dispatcher{
		gateways: gateways,
		timeout:  timeout,
		log:      log.With().Str("component", "notify").Logger(),
		now:      time.Now,
	}
}

// Send hands each notification to every gateway. The caller's cancellation
// does not abort delivery; each attempt gets its own timeout instead.
func (d *Dispatcher) Send(ctx context.Context, items ...model.Notification) {
	base := context.WithoutCancel(ctx)
	for _, n := range items {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = d.now().UTC()
		}
		for _, gw := range d.gateways {
			d.deliver(base, gw, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, gw Gateway, n model.Notification) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := gw.Notify(ctx, n)
	metrics.IncNotification(gw.Name(), err == nil)
	if err != nil {
		event := d.log.Warn().Err(err).
			Str("gateway", gw.Name()).
			Str("kind", string(n.Kind))
		if n.RequestID != nil {
			event = event.Str("request_id", n.RequestID.String())
		}
		event.Msg("notification delivery failed")
	}
}
