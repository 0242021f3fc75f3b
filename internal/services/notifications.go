package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/taskmanager-api/internal/logger"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/notify"
	"go.uber.org/zap"
)

func assignmentMessage(task *models.Task) notify.Message {
	body := fmt.Sprintf(`Hello %s,

You have been assigned a new task: "%s".

Details:
- Description: %s
- Due Date: %s
- Created At: %s

Please log in to the task manager app to view more details.

Best regards,
Task Manager Team
`, task.AssignedTo.Username, task.Name, task.Description, task.DueDate, task.CreatedAt.Format("2006-01-02 15:04:05"))

	return notify.Message{
		To:      []string{task.AssignedTo.Email},
		Subject: fmt.Sprintf("New Task Assigned: %s", task.Name),
		Body:    body,
	}
}

func extensionSubmittedMessage(to string, req *models.ExtensionRequest) notify.Message {
	body := fmt.Sprintf(`Hello,

A deadline extension request has been made for the task "%s" by %s.
The new due date is: %s.
Reason: %s
Requested By: %s
`, req.Task.Name, req.RequestBy.Username, req.NewDeadline, req.Reason, req.RequestBy.Username)

	return notify.Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Task Deadline Extension Request by %s", req.RequestBy.Username),
		Body:    body,
	}
}

func extensionResolvedMessage(req *models.ExtensionRequest) notify.Message {
	action := "Rejected"
	body := fmt.Sprintf("The deadline extension for task '%s' has been rejected.", req.Task.Name)
	if req.Status == models.ExtensionStatusApproved {
		action = "Approved"
		body = fmt.Sprintf("The deadline extension for task '%s' has been approved.\n\nNew Deadline: %s", req.Task.Name, req.NewDeadline)
	}

	return notify.Message{
		To:      []string{req.RequestBy.Email},
		Subject: fmt.Sprintf("Deadline Extension %s for Task: %s", action, req.Task.Name),
		Body:    body,
	}
}

// send hands msg to the notifier. Failures are logged and never returned.
func send(ctx context.Context, notifier notify.Notifier, msg notify.Message) {
	if notifier == nil {
		return
	}
	if len(msg.To) == 0 || msg.To[0] == "" {
		logger.Warn("Notification skipped: no recipient address", zap.String("subject", msg.Subject))
		return
	}
	if err := notifier.Send(ctx, msg); err != nil {
		logger.Warn("Notification failed",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}
