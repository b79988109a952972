package pay

import (
	"context"
	"fmt"
	"sync"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/address"
	"github.com/iov-one/payout/errors"
	"github.com/iov-one/payout/notify"
	"github.com/iov-one/payout/pipeline"
	"github.com/iov-one/payout/queue"
	"github.com/iov-one/payout/report"
	"github.com/iov-one/payout/stats"
	"github.com/tendermint/tendermint/libs/log"
)

// WorkerConfig carries the static configuration of a payment worker. One
// worker serves one payout key.
type WorkerConfig struct {
	// KeyName identifies the payout key. It seeds the pseudonymous
	// statistics id and names the worker in logs.
	KeyName string
	// Network names the chain the payouts are executed on.
	Network string
	// BakingAddress is the reward source account, used to locate the
	// summary row of calculation reports.
	BakingAddress string
	// DestMap rewrites payment destinations before merging.
	DestMap map[string]string
	// DryRun makes the executor simulate without broadcasting. Dry
	// runs never publish statistics.
	DryRun bool
	// ReactivateZeroed keeps payments to dormant accounts in the
	// batch. When false such payments are dropped.
	ReactivateZeroed bool
	// DelegatorPaysXferFee and DelegatorPaysRaFee describe who carries
	// transfer and reactivation fees. They are reported in statistics
	// only, fee arithmetic is the executor's business.
	DelegatorPaysXferFee bool
	DelegatorPaysRaFee   bool
	// PublishStats enables the anonymous statistics record.
	PublishStats bool
	// RewardsType is the classification code of the upstream
	// calculation, "A" for actual or "I" for ideal.
	RewardsType string
}

// Validate checks the configuration fields carrying destination addresses.
// Catching a mistyped address here is much cheaper than a failed injection
// later.
func (cfg WorkerConfig) Validate() error {
	var err error
	if cfg.BakingAddress != "" {
		err = errors.Append(err, address.NewValidator("baking address").Validate(cfg.BakingAddress))
	}
	v := address.NewValidator("destination map")
	for _, dest := range cfg.DestMap {
		err = errors.Append(err, v.Validate(dest))
	}
	return err
}

// Env bundles the collaborators a worker is wired to.
type Env struct {
	Queue      *queue.Queue
	Executor   payout.Executor
	Balances   payout.BalanceSource
	Reports    *report.Store
	Reconciler *report.Reconciler
	Notifier   notify.Notifier
	Publisher  stats.Publisher
	Guard      payout.DiskGuard
	Logger     log.Logger
}

// Worker is the orchestrating loop of the engine: it dequeues batches,
// pushes them through the transform pipeline, submits the ordered
// candidates for execution and durably records the outcome.
//
// A worker never crashes on a batch: any unexpected fault is caught at
// the batch boundary, logged and the loop continues with the next batch.
// The only fatal condition is an exhausted disk, because a half completed
// report write would corrupt the idempotency guarantee.
type Worker struct {
	cfg      WorkerConfig
	queue    *queue.Queue
	pipeline *pipeline.Pipeline
	executor payout.Executor
	reports  *report.Store
	rec      *report.Reconciler
	notifier notify.Notifier
	pub      stats.Publisher
	guard    payout.DiskGuard
	logger   log.Logger

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewWorker returns a worker ready to Run.
func NewWorker(cfg WorkerConfig, env Env) *Worker {
	logger := env.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.With("key", cfg.KeyName)

	return &Worker{
		cfg:      cfg,
		queue:    env.Queue,
		pipeline: pipeline.New(cfg.DestMap, env.Balances, cfg.ReactivateZeroed, logger),
		executor: env.Executor,
		reports:  env.Reports,
		rec:      env.Reconciler,
		notifier: env.Notifier,
		pub:      env.Publisher,
		guard:    env.Guard,
		logger:   logger,
		stopped:  make(chan struct{}),
	}
}

// Stop requests a cooperative shutdown. The flag is observed at loop
// boundaries only, an in-flight batch always runs to completion. To shut
// down through the queue instead, enqueue the poison pill.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopped)
	})
}

func (w *Worker) stopping() bool {
	select {
	case <-w.stopped:
		return true
	default:
		return false
	}
}

// Run processes batches until the poison pill is observed, Stop is
// called, the context is cancelled or the disk capacity guard reports
// exhaustion. Only the disk guard makes Run return an error.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if w.stopping() {
			w.logger.Info("Worker stopped")
			return nil
		}

		// Never attempt a write that could half-complete and corrupt
		// the idempotent report state.
		if w.guard != nil && w.guard.IsFull() {
			w.logger.Error("Disk is full, terminating worker")
			return errors.Wrap(errors.ErrDiskFull, "worker terminated")
		}

		batch, err := w.queue.Get(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Worker context cancelled")
				return nil
			}
			return errors.Wrap(err, "dequeue")
		}

		if !w.consume(ctx, batch) {
			w.logger.Info("Worker returning")
			return nil
		}
	}
}

// consume shields the loop from batch processing faults. It returns false
// only when the batch carried the poison pill.
func (w *Worker) consume(ctx context.Context, batch *payout.Batch) (cont bool) {
	var err error
	cont = true

	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrPanic, "%v", r)
			cont = true
		}
		if err != nil {
			// The cycle may be left half finished. A leftover busy
			// marker makes that detectable on a later retry.
			w.logger.Error("Error at reward payment",
				"cycle", batch.Cycle, "err", fmt.Sprintf("%+v", err))
		}
	}()

	cont, err = w.consumeBatch(ctx, batch)
	return cont
}

func (w *Worker) consumeBatch(ctx context.Context, batch *payout.Batch) (bool, error) {
	if batch.Empty() {
		w.logger.Debug("Batch is empty, ignoring")
		return true, nil
	}
	if batch.IsExit() {
		w.logger.Info("Exit signal received, terminating")
		return false, nil
	}

	cycle := batch.Cycle
	w.logger.Info("Starting payments", "cycle", cycle)

	// Non payable items are dropped entirely and never reported. Items
	// already terminal from a prior run are carried into the canonical
	// report but must never re-enter execution.
	var already, candidates []*payout.Item
	for _, it := range batch.Items {
		if !it.Payable {
			continue
		}
		if it.Status.Processed() {
			already = append(already, it)
		} else {
			candidates = append(candidates, it)
		}
	}

	ordered, err := w.pipeline.Run(candidates)
	if err != nil {
		return true, errors.Wrap(err, "pipeline")
	}

	res, err := w.executor.Pay(ctx, ordered, w.cfg.DryRun)
	if err != nil {
		return true, errors.Wrap(err, "execute")
	}

	paid, failed, injected := countOutcomes(res.Items)

	reportPath, err := w.writeReports(cycle, already, res.Items, failed)
	if err != nil {
		return true, err
	}

	if res.Attempts > 0 {
		if err := w.rec.Reconcile(cycle, res.Items); err != nil {
			return true, errors.Wrap(err, "reconcile")
		}
	}

	if err := w.reports.CleanStale(cycle, failed == 0); err != nil {
		return true, errors.Wrap(err, "clean stale artifacts")
	}

	// Single assignment handoff: the outcome list replaces the batch
	// content exactly once, before any callback observes the batch.
	batch.Items = res.Items
	if batch.Producer != nil {
		if failed == 0 {
			batch.Producer.OnSuccess(batch)
		} else {
			batch.Producer.OnFail(batch)
		}
	}

	if res.Attempts > 0 {
		w.sendNotifications(cycle, res, reportPath, paid, failed, injected)
	}

	if w.cfg.PublishStats && !w.cfg.DryRun {
		w.publishStats(cycle, res, failed, injected)
	} else {
		suffix := ""
		if w.cfg.DryRun {
			suffix = " (dry run)"
		}
		w.logger.Info("Anonymous statistics disabled" + suffix)
	}

	return true, nil
}

// writeReports persists the canonical report and, with failures present,
// the failure report. The canonical report path is returned.
func (w *Worker) writeReports(cycle int64, already, outcomes []*payout.Item, failed int) (string, error) {
	canonical := make([]*payout.Item, 0, len(already)+len(outcomes))
	canonical = append(canonical, already...)
	var failures []*payout.Item
	for _, it := range outcomes {
		if it.Status == payout.StatusFail {
			failures = append(failures, it)
		} else {
			canonical = append(canonical, it)
		}
	}

	path, err := w.reports.Write(cycle, canonical, 0)
	if err != nil {
		return "", errors.Wrap(err, "write canonical report")
	}

	if failed > 0 {
		if _, err := w.reports.Write(cycle, failures, failed); err != nil {
			return "", errors.Wrap(err, "write failure report")
		}
	}
	return path, nil
}

func (w *Worker) sendNotifications(cycle int64, res *payout.ExecResult, reportPath string, paid, failed, injected int) {
	status := "Completed Successfully!"
	if failed > 0 || injected > 0 {
		status = "attempted"
		if failed > 0 {
			status += fmt.Sprintf(", %d failed", failed)
		}
		if injected > 0 {
			status += fmt.Sprintf(", %d injected but final state not known", injected)
		}
	}
	subject := fmt.Sprintf("Reward Payouts for Cycle %d %s", cycle, status)
	message := fmt.Sprintf(
		"The current payout account balance is expected to last for the next %d cycle(s)!",
		res.FutureCycles)

	// Payout notification receives cycle, rewards total, number of
	// recipients. Admin notification receives subject, runway message,
	// the canonical report and the raw outcome items.
	w.notifier.SendPayoutNotification(cycle, res.TotalPaid, paid+failed+injected)
	w.notifier.SendAdminNotification(subject, message, []string{reportPath}, res.Items)
}

// publishStats emits the anonymous record. Publishing is fire and forget,
// neither an error nor a panic of the publisher may reach the caller.
func (w *Worker) publishStats(cycle int64, res *payout.ExecResult, failed, injected int) {
	rec := stats.NewRecord(stats.Tally{
		KeyName:     w.cfg.KeyName,
		Network:     w.cfg.Network,
		Cycle:       cycle,
		Items:       res.Items,
		Attempts:    res.Attempts,
		Failed:      failed,
		Unknown:     injected,
		PaysXfer:    w.cfg.DelegatorPaysXferFee,
		PaysRa:      w.cfg.DelegatorPaysRaFee,
		RewardsType: w.cfg.RewardsType,
	})

	publish := func() (err error) {
		defer errors.Recover(&err)
		return w.pub.Publish(rec)
	}
	if err := publish(); err != nil {
		w.logger.Error("Cannot publish statistics", "cycle", cycle, "err", err)
	}
}

func countOutcomes(items []*payout.Item) (paid, failed, injected int) {
	for _, it := range items {
		switch it.Status {
		case payout.StatusPaid:
			paid++
		case payout.StatusFail:
			failed++
		case payout.StatusInjected:
			injected++
		}
	}
	return paid, failed, injected
}
