// Package worker binds the reservation workflow and its activities to a
// Temporal task queue.
package worker

import (
    "log/slog"

    "go.temporal.io/sdk/client"
    sdkworker "go.temporal.io/sdk/worker"
    "go.temporal.io/sdk/workflow"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
    "github.com/iliyamo/bus-seat-reservation/internal/process"
    "github.com/iliyamo/bus-seat-reservation/internal/sheets"
    "github.com/iliyamo/bus-seat-reservation/internal/tasks"
)

// Registry is the part of a worker used for registration.  Both
// sdkworker.Worker and the SDK's test environment satisfy it.
type Registry interface {
    RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
    RegisterActivity(a interface{})
}

// Register adds the reservation workflow, under its public name, and every
// method of both activity structs.
func Register(r Registry, sheetActivities *sheets.Activities, taskActivities *tasks.Activities) {
    r.RegisterWorkflowWithOptions(process.SeatReservation, workflow.RegisterOptions{Name: process.Name})
    r.RegisterActivity(sheetActivities)
    r.RegisterActivity(taskActivities)
}

// Bootstrap owns the worker polling the configured task queue.
type Bootstrap struct {
    cfg    config.TemporalConfig
    worker sdkworker.Worker
    logger *slog.Logger
}

// New creates a worker on cfg.TaskQueue and registers everything on it.
// Stop waits up to cfg.ShutdownGrace for running activities.
func New(c client.Client, cfg config.TemporalConfig, sheetActivities *sheets.Activities, taskActivities *tasks.Activities, logger *slog.Logger) *Bootstrap {
    if logger == nil {
        logger = slog.Default()
    }
    w := sdkworker.New(c, cfg.TaskQueue, sdkworker.Options{WorkerStopTimeout: cfg.ShutdownGrace})
    Register(w, sheetActivities, taskActivities)
    return &Bootstrap{cfg: cfg, worker: w, logger: logger.With("component", "worker", "task_queue", cfg.TaskQueue)}
}

// Start begins polling without blocking.
func (b *Bootstrap) Start() error {
    if err := b.worker.Start(); err != nil {
        return err
    }
    b.logger.Info("worker started", "namespace", b.cfg.Namespace)
    return nil
}

// Stop drains the worker.
func (b *Bootstrap) Stop() {
    b.logger.Info("stopping worker", "grace", b.cfg.ShutdownGrace)
    b.worker.Stop()
    b.logger.Info("worker stopped")
}
