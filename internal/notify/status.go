package notify

import (
	"context"
	"log/slog"

	"tasktracker/internal/models"
)

// StatusNotifier tells a task's assignee that its status changed. It must be
// called only after the new status has been persisted.
type StatusNotifier struct {
	sender Sender
	logger *slog.Logger
}

func NewStatusNotifier(sender Sender, logger *slog.Logger) *StatusNotifier {
	return &StatusNotifier{sender: sender, logger: logger}
}

// NotifyStatusChange dispatches the change and reports whether a dispatch
// took place. It never fails the caller.
func (n *StatusNotifier) NotifyStatusChange(ctx context.Context, t *models.Task, previous models.TaskStatus) (res Result, dispatched bool) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("[notify][status][panic]", "task_id", t.ID, "panic", r)
			dispatched = false
		}
	}()

	if t.AssigneeID == 0 {
		n.logger.Info("[notify][status][skip] task has no assignee", "task_id", t.ID)
		return Result{}, false
	}

	res = n.sender.Dispatch(ctx, t.AssigneeID, StatusChangeMessage(t, previous))
	n.logger.Info("[notify][status] sent",
		"task_id", t.ID,
		"from", previous,
		"to", t.Status,
		"delivered", res.Delivered(),
	)
	return res, true
}
