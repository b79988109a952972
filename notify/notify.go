package notify

import (
	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/tendermint/tendermint/libs/log"
)

// Notifier delivers payout and admin notifications. Transport (mail, chat,
// webhooks) is implemented by plugins outside of this module.
type Notifier interface {
	// SendPayoutNotification announces a completed payout run: the
	// cycle, the total amount paid and the number of recipients.
	SendPayoutNotification(cycle int64, total coin.Mutez, recipients int) error

	// SendAdminNotification delivers an operator facing message with a
	// subject, report file attachments and the raw outcome items.
	SendAdminNotification(subject, message string, attachments []string, items []*payout.Item) error
}

// Fanout multiplexes notifications to all registered plugins. A failing
// plugin is logged and skipped, it never fails the payout run and never
// prevents delivery to the remaining plugins.
type Fanout struct {
	plugins []Notifier
	logger  log.Logger
}

var _ Notifier = (*Fanout)(nil)

// NewFanout returns a fanout delivering to all given plugins. logger may
// be nil.
func NewFanout(logger log.Logger, plugins ...Notifier) *Fanout {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Fanout{
		plugins: plugins,
		logger:  logger,
	}
}

// Register adds another plugin to the fanout.
func (f *Fanout) Register(n Notifier) {
	f.plugins = append(f.plugins, n)
}

func (f *Fanout) SendPayoutNotification(cycle int64, total coin.Mutez, recipients int) error {
	for _, p := range f.plugins {
		if err := p.SendPayoutNotification(cycle, total, recipients); err != nil {
			f.logger.Error("Payout notification failed",
				"plugin", pluginName(p), "cycle", cycle, "err", err)
		}
	}
	return nil
}

func (f *Fanout) SendAdminNotification(subject, message string, attachments []string, items []*payout.Item) error {
	for _, p := range f.plugins {
		if err := p.SendAdminNotification(subject, message, attachments, items); err != nil {
			f.logger.Error("Admin notification failed",
				"plugin", pluginName(p), "subject", subject, "err", err)
		}
	}
	return nil
}

func pluginName(n Notifier) string {
	type named interface {
		Name() string
	}
	if n, ok := n.(named); ok {
		return n.Name()
	}
	return "unnamed"
}
