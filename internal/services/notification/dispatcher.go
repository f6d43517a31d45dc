package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bill-management-backend/internal/mailer"
	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
)

// Dispatcher composes and delivers bill notifications. Dispatch is idempotent
// per (bill, type): once a sent record exists it becomes a no-op. Transport
// failures are recorded as failed rows and never surfaced to the caller.
type Dispatcher struct {
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	mailer           mailer.Mailer
	log              *zap.Logger
}

func NewDispatcher(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	m mailer.Mailer,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           m,
		log:              log,
	}
}

// Notify delivers one message about a bill. Returns the notification record
// that now exists for the attempt: the pre-existing sent record, a new sent
// record, or a new failed record carrying the transport error.
func (d *Dispatcher) Notify(bill *models.Bill, typ models.NotificationType, subject, message string) (*models.Notification, error) {
	existing, err := d.notificationRepo.FindSent(bill.ID, typ)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	customer, err := d.userRepo.GetByID(bill.CustomerID)
	if err != nil {
		return nil, err
	}

	record := &models.Notification{
		ID:         uuid.New(),
		BillID:     bill.ID,
		CustomerID: bill.CustomerID,
		Type:       typ,
		Subject:    subject,
		Message:    message,
		SentVia:    "email",
		Status:     models.NotificationStatusSent,
		SentAt:     time.Now(),
	}

	if sendErr := d.mailer.Send(customer.Email, subject, message); sendErr != nil {
		record.Status = models.NotificationStatusFailed
		record.ErrorMessage = sendErr.Error()
		if d.log != nil {
			d.log.Warn("notification delivery failed",
				zap.String("bill_id", bill.ID.String()),
				zap.String("type", string(typ)),
				zap.Error(sendErr))
		}
	}

	if err := d.notificationRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// NotifyOverdue sends the overdue reminder for a bill.
func (d *Dispatcher) NotifyOverdue(bill *models.Bill) (*models.Notification, error) {
	subject := fmt.Sprintf("Overdue Bill #%s", bill.BillNumber)
	message := fmt.Sprintf(
		"Your payment for bill #%s (amount: %s) was due on %s. Please make the payment as soon as possible.",
		bill.BillNumber, bill.Amount.StringFixed(2), bill.DueDate.Format("2006-01-02"))
	return d.Notify(bill, models.NotificationTypeOverdue, subject, message)
}

// NotifyUpcomingDue sends the due-tomorrow reminder for a bill.
func (d *Dispatcher) NotifyUpcomingDue(bill *models.Bill) (*models.Notification, error) {
	subject := fmt.Sprintf("Reminder: Bill #%s is due tomorrow", bill.BillNumber)
	message := fmt.Sprintf(
		"Your bill #%s for %s is due tomorrow (%s).",
		bill.BillNumber, bill.Amount.StringFixed(2), bill.DueDate.Format("2006-01-02"))
	return d.Notify(bill, models.NotificationTypeUpcomingDue, subject, message)
}

// NotifyPaymentConfirmation confirms a payment applied to a bill. Errors are
// swallowed so the allocation response never depends on delivery.
func (d *Dispatcher) NotifyPaymentConfirmation(bill *models.Bill, payment *models.Payment) {
	subject := fmt.Sprintf("Payment received for bill #%s", bill.BillNumber)
	message := fmt.Sprintf(
		"We received your payment %s of %s. Bill #%s is now %s.",
		payment.ID, payment.Amount.StringFixed(2), bill.BillNumber, bill.Status)
	if _, err := d.Notify(bill, models.NotificationTypePaymentConfirmation, subject, message); err != nil {
		if d.log != nil {
			d.log.Warn("payment confirmation not recorded",
				zap.String("bill_id", bill.ID.String()),
				zap.Error(err))
		}
	}
}
