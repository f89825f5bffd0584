package process

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RetryPolicy is shared by every activity of the reservation process.
var RetryPolicy = &temporal.RetryPolicy{
	InitialInterval:    time.Second,
	BackoffCoefficient: 2.0,
	MaximumInterval:    100 * time.Second,
}

// DefaultActivityOptions covers spreadsheet calls and short task calls.
var DefaultActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout:    10 * time.Minute,
	ScheduleToCloseTimeout: 365 * 24 * time.Hour,
	RetryPolicy:            RetryPolicy,
}

// WaitActivityOptions covers activities that wait for a human to finish a
// task.
var WaitActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout:    24 * time.Hour,
	ScheduleToCloseTimeout: 365 * 24 * time.Hour,
	RetryPolicy:            RetryPolicy,
}
