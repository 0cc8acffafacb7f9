package notify

import (
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/models"
)

const (
	reminderSubject = "Reminder: task due soon"
	systemSubject   = "System notification"

	dueLayout = "2006-01-02 15:04 MST"
)

// Message is one notification as handed to every channel. Body is what gets
// persisted and pushed; Summary is the short form used by SMS.
type Message struct {
	Subject string
	Body    string
	Summary string
	// Urgent messages are additionally sent over SMS when a phone is on file.
	Urgent bool
}

// HoursRemaining is the number of whole hours left until due, rounded down.
func HoursRemaining(due, now time.Time) int64 {
	if !due.After(now) {
		return 0
	}
	return int64(due.Sub(now) / time.Hour)
}

// ReminderMessage builds the reminder sent to the assignee of a task that is
// about to fall due.
func ReminderMessage(t *models.Task, assignee *models.User, now time.Time) Message {
	due := "-"
	var hours int64
	if t.DueAt != nil {
		due = t.DueAt.Format(dueLayout)
		hours = HoursRemaining(*t.DueAt, now)
	}
	description := strings.TrimSpace(t.Description)
	if description == "" {
		description = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", assignee.FullName())
	b.WriteString("This is a reminder that the following task is due soon:\n\n")
	fmt.Fprintf(&b, "Task: %s\n", t.Name)
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Due: %s\n", due)
	fmt.Fprintf(&b, "Hours remaining: %d\n", hours)
	fmt.Fprintf(&b, "Status: %s\n\n", t.Status)
	b.WriteString("Please make sure to complete it on time.")

	return Message{
		Subject: reminderSubject,
		Body:    b.String(),
		Summary: fmt.Sprintf("Task '%s' is due in %dh (%s)", t.Name, hours, due),
		Urgent:  true,
	}
}

// StatusChangeMessage describes a status transition of a task.
func StatusChangeMessage(t *models.Task, previous models.TaskStatus) Message {
	body := fmt.Sprintf("status of task '%s' changed from '%s' to '%s'", t.Name, previous, t.Status)
	return Message{
		Subject: systemSubject,
		Body:    body,
		Summary: body,
	}
}
