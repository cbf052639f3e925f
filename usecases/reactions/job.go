package reactions

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/workerpool"

	"emotify/core"
	"emotify/core/log"
	"emotify/models"
	"emotify/utils"
)

// Job is one bulk reaction run. Its state moves pending -> running -> completed, cancelled
// or failed, and never leaves a terminal state.
type Job struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    models.JobState
	channels []models.ChannelStatus
	summary  models.JobSummary
	err      error

	processed atomic.Int64
	statuses  chan models.ChannelStatus
	done      chan struct{}

	fatalOnce sync.Once
	fatalErr  error
}

func newJob(parent context.Context, id string, channels int) *Job {
	ctx, cancel := context.WithCancel(parent)
	return &Job{
		ID:       id,
		ctx:      ctx,
		cancel:   cancel,
		state:    models.JobPending,
		statuses: make(chan models.ChannelStatus, channels),
		done:     make(chan struct{}),
	}
}

func (j *Job) State() models.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Processed is the number of messages acted upon so far across all channels
func (j *Job) Processed() int64 {
	return j.processed.Load()
}

// Statuses delivers one status per channel as each finishes. It is closed when the job ends.
func (j *Job) Statuses() <-chan models.ChannelStatus {
	return j.statuses
}

// Cancel stops the job. Requests already sent are allowed to finish.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed once the job has reached a terminal state
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job ends. The error is the fatal cause for a failed job and
// context.Canceled for a cancelled one.
func (j *Job) Wait() (models.JobSummary, error) {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summary, j.err
}

func (j *Job) setState(state models.JobState) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.IsTerminal() {
		return
	}
	j.state = state
}

// fail records the first fatal error and stops every worker
func (j *Job) fail(err error) {
	j.fatalOnce.Do(func() {
		log.Error("❌ Fatal error, aborting job", "job", j.ID, "error", err)
		j.mu.Lock()
		j.fatalErr = err
		j.mu.Unlock()
		j.cancel()
	})
}

func (j *Job) run(u *ReactionsUseCase, channels []models.Channel, job models.ReactionJob) {
	started := time.Now()
	defer j.cancel()

	parallelism := max(1, job.Parallelism)
	log.Info("📋 Starting to run reaction job",
		"job", j.ID, "channels", len(channels), "emoji", job.Emoji.String(),
		"direction", job.Direction, "parallelism", parallelism)
	j.setState(models.JobRunning)

	utils.AssertInvariant(len(channels) <= cap(j.statuses), "status buffer must hold one status per channel")

	pool := workerpool.New(parallelism)
	for _, channel := range channels {
		pool.Submit(func() {
			status := j.processChannel(u, channel, job)

			j.mu.Lock()
			j.channels = append(j.channels, status)
			j.mu.Unlock()
			j.statuses <- status
		})
	}
	pool.StopWait()

	j.finish(started)
}

func (j *Job) finish(started time.Time) {
	j.mu.Lock()
	summary := models.JobSummary{
		JobID:    j.ID,
		Channels: j.channels,
		Elapsed:  time.Since(started),
	}
	cancelled := false
	for _, status := range j.channels {
		summary.Processed += status.Processed
		summary.Succeeded += status.Succeeded
		summary.Failed += status.Failed
		if status.State == models.ChannelCancelled {
			cancelled = true
		}
	}

	switch {
	case j.fatalErr != nil:
		summary.State = models.JobFailed
		j.err = j.fatalErr
	case cancelled:
		summary.State = models.JobCancelled
		j.err = context.Canceled
	default:
		summary.State = models.JobCompleted
	}
	j.state = summary.State
	j.summary = summary
	j.mu.Unlock()

	close(j.statuses)
	close(j.done)

	log.Info("📋 Completed successfully - reaction job finished",
		"job", j.ID, "state", summary.State, "processed", summary.Processed,
		"succeeded", summary.Succeeded, "failed", summary.Failed, "elapsed", summary.Elapsed)
}

func (j *Job) processChannel(u *ReactionsUseCase, channel models.Channel, job models.ReactionJob) models.ChannelStatus {
	ctx := j.ctx
	status := models.ChannelStatus{Channel: channel}
	log.Debug("📋 Starting to process channel", "job", j.ID, "channel", channel.HierarchicalName())

	if err := ctx.Err(); err != nil {
		status.State = models.ChannelCancelled
		status.Err = err
		return status
	}

	messages := u.client.GetMessages(ctx, channel.ID, job.Query)
	for messages.Next(ctx) {
		if err := ctx.Err(); err != nil {
			break
		}

		message := messages.Value()
		if !job.Matches(message) {
			u.reporter.ChannelProgress(channel, messages.Progress())
			continue
		}

		err := j.apply(ctx, u, channel, message, job)
		if core.IsCancellation(err) {
			// Cancelled before the request went out or while waiting out a 429
			break
		}

		j.processed.Add(1)
		status.Processed++
		switch {
		case err == nil:
			status.Succeeded++
		case core.IsFatal(err):
			status.Failed++
			status.State = models.ChannelFailed
			status.Err = err
			j.fail(err)
			return status
		default:
			status.Failed++
			log.Warn("⚠️ Failed to update reaction", "channel", channel.ID, "message", message.ID, "error", err)
			u.reporter.ItemFailed(channel, message.ID, err)
		}
		u.reporter.ChannelProgress(channel, messages.Progress())

		if job.Delay > 0 {
			if err := sleep(ctx, job.Delay); err != nil {
				break
			}
		}
	}

	err := messages.Err()
	switch {
	case err != nil && core.IsFatal(err):
		status.State = models.ChannelFailed
		status.Err = err
		j.fail(err)
	case ctx.Err() != nil || core.IsCancellation(err):
		status.State = models.ChannelCancelled
		status.Err = context.Canceled
	case err != nil:
		log.Error("❌ Failed to list messages", "channel", channel.ID, "error", err)
		status.State = models.ChannelFailed
		status.Err = err
	default:
		status.State = models.ChannelCompleted
		u.reporter.ChannelProgress(channel, 1)
	}

	log.Debug("📋 Completed channel", "job", j.ID, "channel", channel.HierarchicalName(),
		"state", status.State, "processed", status.Processed, "failed", status.Failed)
	return status
}

func (j *Job) apply(
	ctx context.Context,
	u *ReactionsUseCase,
	channel models.Channel,
	message models.Message,
	job models.ReactionJob,
) error {
	if job.Direction == models.ReactionRemove {
		err := u.client.RemoveReaction(ctx, channel.ID, message.ID, job.Emoji)
		if core.IsNotFoundError(err) {
			// Already absent, which is the requested end state
			return nil
		}
		return err
	}
	return u.client.AddReaction(ctx, channel.ID, message.ID, job.Emoji)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
