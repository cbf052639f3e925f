package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

type ReactionDirection string

const (
	ReactionAdd    ReactionDirection = "add"
	ReactionRemove ReactionDirection = "remove"
)

type MessageOrder string

const (
	OrderAscending  MessageOrder = "asc"
	OrderDescending MessageOrder = "desc"
)

func ParseMessageOrder(value string) (MessageOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "asc", "ascending":
		return OrderAscending, nil
	case "desc", "descending":
		return OrderDescending, nil
	default:
		return OrderAscending, fmt.Errorf("unknown message order %q (expected asc or desc)", value)
	}
}

// MessageFilter decides whether a message is acted upon
type MessageFilter func(Message) bool

// MessageQuery bounds and orders a message walk. Both boundaries are exclusive.
type MessageQuery struct {
	After  mo.Option[Snowflake]
	Before mo.Option[Snowflake]
	Order  MessageOrder
}

// ReactionJob is the per-channel unit of work of a bulk reaction run
type ReactionJob struct {
	Emoji       Emoji
	Direction   ReactionDirection
	Delay       time.Duration
	Parallelism int
	Query       MessageQuery
	Filter      MessageFilter // nil matches everything
}

func (j ReactionJob) Matches(message Message) bool {
	return j.Filter == nil || j.Filter(message)
}

type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobCancelled JobState = "cancelled"
	JobFailed    JobState = "failed"
)

func (s JobState) IsTerminal() bool {
	return s == JobCompleted || s == JobCancelled || s == JobFailed
}

type ChannelState string

const (
	ChannelCompleted ChannelState = "completed"
	ChannelCancelled ChannelState = "cancelled"
	ChannelFailed    ChannelState = "failed"
)

// ChannelStatus reports the outcome of one channel of a job
type ChannelStatus struct {
	Channel   Channel
	State     ChannelState
	Processed int
	Succeeded int
	Failed    int
	Err       error
}

// JobSummary aggregates every channel status of a finished job
type JobSummary struct {
	JobID     string
	State     JobState
	Channels  []ChannelStatus
	Processed int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}
