package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// MessageHandler runs pool calls
type MessageHandler interface {
	Execute(ctx context.Context, req ExecuteRequest) (*HandleAnswer, error)
	Query(ctx context.Context, req QueryRequest) (*QueryAnswer, error)
}

// DrawTriggerWorker submits claim_rewards as the triggerer whenever the
// current lottery window has ended
type DrawTriggerWorker struct {
	handler      MessageHandler
	blocks       BlockSource
	triggerer    string
	pollInterval time.Duration
}

// NewDrawTriggerWorker creates a new draw trigger worker
func NewDrawTriggerWorker(handler MessageHandler, blocks BlockSource, triggerer string, pollInterval time.Duration) *DrawTriggerWorker {
	return &DrawTriggerWorker{
		handler:      handler,
		blocks:       blocks,
		triggerer:    triggerer,
		pollInterval: pollInterval,
	}
}

// Start begins the draw trigger worker
func (w *DrawTriggerWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Draw trigger worker started")

		for {
			wait, err := w.RunOnce(ctx)
			if err != nil {
				log.Errorf("Error running draw trigger: %v", err)
				wait = w.pollInterval
			}

			select {
			case <-ctx.Done():
				log.Info("Draw trigger worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Draw trigger worker shutting down (stop requested)...")
				return
			case <-time.After(wait):
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RunOnce triggers a draw if one is due and returns how long to wait before
// checking again. The wait never exceeds the poll interval.
func (w *DrawTriggerWorker) RunOnce(ctx context.Context) (time.Duration, error) {
	info, err := w.handler.Query(ctx, QueryRequest{Msg: QueryMsg{LotteryInfo: &Empty{}}})
	if err != nil {
		return 0, fmt.Errorf("failed to query lottery info: %w", err)
	}
	lottery := info.LotteryInfo
	if lottery.IsStopped {
		log.Debug("Pool is stopped, skipping draw")
		return w.pollInterval, nil
	}

	block := w.blocks.Current()
	if block.Time < lottery.EndTime {
		return w.capWait(time.Duration(lottery.EndTime-block.Time) * time.Second), nil
	}

	answer, err := w.handler.Execute(ctx, ExecuteRequest{
		Sender:      w.triggerer,
		BlockHeight: &block.Height,
		BlockTime:   &block.Time,
		Msg:         HandleMsg{ClaimRewards: &Empty{}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to claim rewards: %w", err)
	}

	fields := log.Fields{"status": answer.Status}
	if answer.Draw != nil {
		fields["outcome"] = answer.Draw.Outcome
		fields["winner"] = answer.Draw.Winner
		fields["prize"] = answer.Draw.Prize
		fields["candidates"] = answer.Draw.Candidates
	}
	if answer.Window != nil {
		fields["next_end_time"] = answer.Window.EndTime
	}
	log.WithFields(fields).Info("Lottery draw completed")

	if answer.Window == nil || answer.Window.EndTime <= block.Time {
		return w.pollInterval, nil
	}
	return w.capWait(time.Duration(answer.Window.EndTime-block.Time) * time.Second), nil
}

func (w *DrawTriggerWorker) capWait(d time.Duration) time.Duration {
	if d > w.pollInterval {
		return w.pollInterval
	}
	return d
}
