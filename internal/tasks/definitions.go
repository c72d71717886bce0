package tasks

import (
	"time"

	"sixfinity_gym/internal/services"
)

// Deps carries the services task handlers execute against
type Deps struct {
	Payments      *services.PaymentService
	Cancellations *services.CancellationService
	Bookings      *services.BookingService
	Notifier      *services.NotificationService
	Location      *time.Location
}

// DefineTasks registers all available tasks
func DefineTasks(deps Deps) {
	if deps.Location == nil {
		deps.Location = time.Local
	}

	// General tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Payment sweeps
	verifyPayments := &VerifyPendingPaymentsTaskDef{payments: deps.Payments}
	RegisterHandler(verifyPayments.TaskID(), verifyPayments.HandleExecution)

	processRefunds := &ProcessPendingRefundsTaskDef{cancellations: deps.Cancellations}
	RegisterHandler(processRefunds.TaskID(), processRefunds.HandleExecution)

	// Booking sweeps
	reminders := &BookingReminderTaskDef{notifier: deps.Notifier, loc: deps.Location}
	RegisterHandler(reminders.TaskID(), reminders.HandleExecution)

	noShows := &MarkNoShowsTaskDef{bookings: deps.Bookings}
	RegisterHandler(noShows.TaskID(), noShows.HandleExecution)
}
