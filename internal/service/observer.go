// Package service holds what the per-domain gateway services share: turning
// repository results into envelopes and recording every operation.
package service

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

// EventStatusChanged is the message type published after a successful
// status update.
const EventStatusChanged = "status_changed"

// StatusChange is the payload of an EventStatusChanged message.
type StatusChange struct {
	Entity lifecycle.Entity `json:"entity"`
	ID     string           `json:"id"`
	Status string           `json:"status"`
	At     time.Time        `json:"at"`
}

// Observer logs and measures gateway operations. The zero value and a nil
// *Observer are both usable.
type Observer struct {
	log     *logger.Logger
	metrics *metrics.Metrics
	events  messaging.Broker
	channel string
}

type ObserverOption func(*Observer)

// WithEvents publishes status changes to channel on b.
func WithEvents(b messaging.Broker, channel string) ObserverOption {
	return func(o *Observer) {
		o.events = b
		o.channel = channel
	}
}

func NewObserver(log *logger.Logger, m *metrics.Metrics, opts ...ObserverOption) *Observer {
	if log == nil {
		log = logger.Nop()
	}
	o := &Observer{log: log, metrics: m}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StatusChanged announces a completed transition. Publishing failures are
// logged and never fail the operation that caused them.
func (o *Observer) StatusChanged(ctx context.Context, entity lifecycle.Entity, id, status string) {
	if o == nil || o.events == nil {
		return
	}
	msg, err := messaging.NewMessage(EventStatusChanged, StatusChange{
		Entity: entity,
		ID:     id,
		Status: status,
		At:     time.Now().UTC(),
	})
	if err == nil {
		err = o.events.Publish(ctx, o.channel, msg)
	}
	if err != nil && o.log != nil {
		o.log.Warn("status event not published", "entity", string(entity), "id", id, "error", err.Error())
	}
}

// Finish wraps (data, err) in an envelope. Rejections are logged at warn
// level, internal failures at error level.
func Finish[T any](o *Observer, op string, start time.Time, data T, err error) httputil.Envelope[T] {
	env := httputil.Respond(data, err, "")
	if o == nil {
		return env
	}
	if o.metrics != nil {
		o.metrics.ObserveOperation(op, env.Code, time.Since(start))
	}
	if o.log == nil {
		return env
	}
	switch {
	case env.Code >= 500:
		o.log.Error(err, "operation failed", "operation", op)
	case !env.OK():
		o.log.Warn("operation rejected", "operation", op, "code", env.Code, "message", env.Message)
	}
	return env
}

// Reject is Finish for inputs refused before reaching a repository.
func Reject[T any](o *Observer, op string, start time.Time, err error) httputil.Envelope[T] {
	var zero T
	return Finish(o, op, start, zero, err)
}

// Check validates req, treating a nil validator as always passing.
func Check(v validator.Validator, req interface{}) error {
	if v == nil {
		return nil
	}
	return v.Validate(req)
}

// Done is the data of operations that return nothing.
type Done struct{}

// CheckField validates a single value against rules.
func CheckField(v validator.Validator, field string, value interface{}, rules ...string) error {
	if v == nil {
		return nil
	}
	return v.ValidateField(field, value, rules...)
}
