// Package process holds the bus seat reservation process run by the
// workflow engine.
package process

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/sheets"
	"github.com/iliyamo/bus-seat-reservation/internal/tasks"
)

// Name is the workflow type the engine starts.
const Name = "SampleWorkflow"

type Request struct {
	ProcessID string
}

type Response struct {
	Message string
}

// Activity references; only the method names are used by the engine.
var (
	sheetActs *sheets.Activities
	taskActs  *tasks.Activities
)

// NoSeatsAvailable reports whether the seats cell means the bus is full.
// Only the literal "0" counts: "00", "0 " or an empty cell (which is also
// what a failed read returns) all lead to the reservation form.
func NoSeatsAvailable(count string) bool {
	return strings.EqualFold(count, "0")
}

// SeatReservation checks the seat count, then either notifies that no
// seats are left or collects a reservation form, appends it to the
// spreadsheet and notifies the seat number.  It finally completes the
// process and returns the completion message.
func SeatReservation(ctx workflow.Context, req Request) (Response, error) {
	if req.ProcessID == "" {
		req.ProcessID = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	if len(req.ProcessID) > model.MaxProcessIDLen {
		return Response{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("process id longer than %d bytes", model.MaxProcessIDLen), "InvalidProcessID", nil)
	}
	r := &reservation{
		ctx:       workflow.WithActivityOptions(ctx, DefaultActivityOptions),
		waitCtx:   workflow.WithActivityOptions(ctx, WaitActivityOptions),
		processID: req.ProcessID,
		ids:       NewIDGenerator(req.ProcessID),
		logger:    workflow.GetLogger(ctx),
	}
	r.logger.Info("Process started", "ProcessID", r.processID)

	var seats string
	if err := workflow.ExecuteActivity(r.ctx, sheetActs.GetCellValue).Get(r.ctx, &seats); err != nil {
		return Response{}, err
	}

	if NoSeatsAvailable(seats) {
		if _, err := r.createTaskAndWait(tasks.CodeNoSeatsAvailable, nil); err != nil {
			return Response{}, err
		}
	} else {
		form, err := r.reservationForm()
		if err != nil {
			return Response{}, err
		}
		if err := r.writeSheet(form); err != nil {
			return Response{}, err
		}
		if err := r.notifyReservationComplete(); err != nil {
			return Response{}, err
		}
	}

	var done tasks.CompleteProcessResponse
	if err := workflow.ExecuteActivity(r.ctx, taskActs.CompleteProcess, tasks.CompleteProcessRequest{ProcessID: r.processID}).Get(r.ctx, &done); err != nil {
		return Response{}, err
	}
	r.logger.Info("Process finished", "ProcessID", r.processID)
	return Response{Message: done.Message}, nil
}

type reservation struct {
	ctx       workflow.Context
	waitCtx   workflow.Context
	processID string
	ids       *IDGenerator
	logger    log.Logger
}

// reservationForm shows the current table snapshot on a form task and
// returns the answers once the form is submitted.
func (r *reservation) reservationForm() (model.ReservationRequest, error) {
	var table string
	if err := workflow.ExecuteActivity(r.ctx, sheetActs.ReadSheet).Get(r.ctx, &table); err != nil {
		return model.ReservationRequest{}, err
	}
	task, err := r.createTaskAndWait(tasks.CodeReservationForm, map[string]string{tasks.ElementSeats: table})
	if err != nil {
		return model.ReservationRequest{}, err
	}
	return model.ReservationRequest{
		ProcessID: r.processID,
		FirstName: task.Value(tasks.ElementFirstName),
		LastName:  task.Value(tasks.ElementLastName),
		Email:     task.Value(tasks.ElementEmail),
	}, nil
}

func (r *reservation) writeSheet(form model.ReservationRequest) error {
	var written []string
	return workflow.ExecuteActivity(r.ctx, sheetActs.WriteSheet, form.FirstName, form.LastName, form.Email).Get(r.ctx, &written)
}

func (r *reservation) notifyReservationComplete() error {
	var seatNo string
	if err := workflow.ExecuteActivity(r.ctx, sheetActs.GetSeatNo).Get(r.ctx, &seatNo); err != nil {
		return err
	}
	_, err := r.createTaskAndWait(tasks.CodeReservationComplete, map[string]string{tasks.ElementSeatNo: seatNo})
	return err
}

// createTaskAndWait creates a task, blocks until it is finished and
// returns it with the submitted element values.
func (r *reservation) createTaskAndWait(code string, values map[string]string) (model.Task, error) {
	taskID := r.ids.Next()
	create := tasks.CreateTaskRequest{
		TaskID:         taskID,
		ProcessID:      r.processID,
		DefinitionCode: code,
		ElementValues:  values,
	}
	if err := workflow.ExecuteActivity(r.waitCtx, taskActs.CreateTaskAndWaitFinished, create).Get(r.waitCtx, nil); err != nil {
		return model.Task{}, fmt.Errorf("task %s (%s): %w", taskID, code, err)
	}
	var resp tasks.RetrieveTaskResponse
	if err := workflow.ExecuteActivity(r.ctx, taskActs.RetrieveTask, tasks.RetrieveTaskRequest{TaskID: taskID}).Get(r.ctx, &resp); err != nil {
		return model.Task{}, err
	}
	return resp.Task, nil
}
