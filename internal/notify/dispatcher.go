package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
)

// ErrNoAddress is returned by a channel that has nowhere to deliver for the
// recipient; the dispatcher records it as skipped rather than failed.
var ErrNoAddress = errs.New("recipient has no address for this channel")

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

type ChannelResult struct {
	Channel string
	Status  Status
	Err     error
}

// Result lists the outcome of every channel in fan-out order.
type Result struct {
	UserID   int64
	At       time.Time
	Channels []ChannelResult
}

func (r Result) StatusOf(channel string) (Status, bool) {
	for _, c := range r.Channels {
		if c.Channel == channel {
			return c.Status, true
		}
	}
	return "", false
}

func (r Result) Delivered() int {
	n := 0
	for _, c := range r.Channels {
		if c.Status == StatusDelivered {
			n++
		}
	}
	return n
}

func (r Result) Failed() []ChannelResult {
	var out []ChannelResult
	for _, c := range r.Channels {
		if c.Status == StatusFailed {
			out = append(out, c)
		}
	}
	return out
}

// Recipient is the target of a dispatch. User is nil when it could not be
// resolved; channels that need an address then skip.
type Recipient struct {
	UserID int64
	User   *models.User
}

type Channel interface {
	Name() string
	Deliver(ctx context.Context, to Recipient, msg Message, at time.Time) error
}

// Sender is what callers depend on to fan a message out.
type Sender interface {
	Dispatch(ctx context.Context, userID int64, msg Message) Result
}

// RecipientSender fans a message out to a recipient the caller already
// resolved, skipping the user lookup.
type RecipientSender interface {
	DispatchTo(ctx context.Context, to Recipient, msg Message) Result
}

type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Dispatcher delivers a message through every configured channel in order.
// A channel's failure never affects the others and nothing is returned as an
// error: the outcome of each channel is reported in the Result.
type Dispatcher struct {
	users    UserLookup
	clock    clock.Clock
	logger   *slog.Logger
	channels []Channel
}

func NewDispatcher(users UserLookup, clk clock.Clock, logger *slog.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{users: users, clock: clk, logger: logger, channels: channels}
}

func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

func (d *Dispatcher) Dispatch(ctx context.Context, userID int64, msg Message) Result {
	return d.DispatchTo(ctx, d.resolve(ctx, userID), msg)
}

// DispatchTo delivers to an already resolved recipient. A nil to.User is
// allowed; channels that need an address then skip.
func (d *Dispatcher) DispatchTo(ctx context.Context, to Recipient, msg Message) Result {
	at := d.clock.Now()
	res := Result{UserID: to.UserID, At: at, Channels: make([]ChannelResult, 0, len(d.channels))}
	for _, ch := range d.channels {
		res.Channels = append(res.Channels, d.deliver(ctx, ch, to, msg, at))
	}

	d.logger.Info("[notify][dispatch] done",
		"user_id", to.UserID,
		"delivered", res.Delivered(),
		"failed", len(res.Failed()),
		"channels", len(res.Channels),
	)
	return res
}

// resolve looks the recipient up. Errors and panics leave User nil.
func (d *Dispatcher) resolve(ctx context.Context, userID int64) (to Recipient) {
	to.UserID = userID
	defer func() {
		if r := recover(); r != nil {
			to.User = nil
			d.logger.Error("[notify][recipient][panic]", "user_id", userID, "panic", r)
		}
	}()

	user, err := d.users.FindByID(ctx, userID)
	switch {
	case err != nil:
		d.logger.Warn("[notify][recipient][err] cannot resolve recipient", "user_id", userID, "error", err)
	case user == nil:
		d.logger.Warn("[notify][recipient] unknown recipient", "user_id", userID)
	default:
		to.User = user
	}
	return to
}

func (d *Dispatcher) deliver(ctx context.Context, ch Channel, to Recipient, msg Message, at time.Time) (out ChannelResult) {
	out.Channel = ch.Name()
	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("channel panicked: %v", r)
			d.logger.Error("[notify]["+out.Channel+"][panic]", "user_id", to.UserID, "panic", r)
		}
	}()

	err := ch.Deliver(ctx, to, msg, at)
	switch {
	case err == nil:
		out.Status = StatusDelivered
	case errs.Is(err, ErrNoAddress):
		out.Status = StatusSkipped
		d.logger.Debug("[notify]["+out.Channel+"][skip]", "user_id", to.UserID)
	default:
		out.Status = StatusFailed
		out.Err = err
		d.logger.Warn("[notify]["+out.Channel+"][err] delivery failed", "user_id", to.UserID, "error", err)
	}
	return out
}
