package sweep

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bill-management-backend/internal/models"
	"bill-management-backend/internal/repository"
)

// Notifier is the slice of the notification dispatcher the sweep needs.
type Notifier interface {
	NotifyOverdue(bill *models.Bill) (*models.Notification, error)
	NotifyUpcomingDue(bill *models.Bill) (*models.Notification, error)
}

// Sweeper transitions past-due pending bills to overdue and triggers the
// due-date reminders. Bills are processed independently: one bad bill never
// aborts the batch, and a second run is a no-op for bills already notified.
type Sweeper struct {
	billRepo *repository.BillRepository
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

func NewSweeper(billRepo *repository.BillRepository, notifier Notifier, log *zap.Logger) *Sweeper {
	return &Sweeper{
		billRepo: billRepo,
		db:       billRepo.DB(),
		notifier: notifier,
		log:      log,
	}
}

// Run executes one sweep pass for the current date.
func (s *Sweeper) Run(ctx context.Context) error {
	return s.RunAt(ctx, time.Now())
}

// RunAt executes one sweep pass as of the given date.
func (s *Sweeper) RunAt(ctx context.Context, today time.Time) error {
	overdue, err := s.billRepo.FindOverdueCandidates(today)
	if err != nil {
		return err
	}
	for i := range overdue {
		if err := s.sweepBill(ctx, &overdue[i], today); err != nil {
			s.log.Warn("sweep: bill skipped",
				zap.String("bill_id", overdue[i].ID.String()),
				zap.Error(err))
		}
	}

	upcoming, err := s.billRepo.FindDueOn(today.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	for i := range upcoming {
		if _, err := s.notifier.NotifyUpcomingDue(&upcoming[i]); err != nil {
			s.log.Warn("sweep: upcoming-due reminder skipped",
				zap.String("bill_id", upcoming[i].ID.String()),
				zap.Error(err))
		}
	}

	s.log.Info("sweep completed",
		zap.Int("overdue_candidates", len(overdue)),
		zap.Int("upcoming_due", len(upcoming)))
	return nil
}

// sweepBill re-derives one bill's status under a row lock. The candidate
// query ran outside the transaction, so a payment may have landed since; the
// fresh allocation sum decides, and a paid or partially paid bill is left
// alone.
func (s *Sweeper) sweepBill(ctx context.Context, candidate *models.Bill, today time.Time) error {
	var swept *models.Bill

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bill, "id = ?", candidate.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		total, err := repository.SumAllocations(tx, bill.ID)
		if err != nil {
			return err
		}

		status := models.DeriveBillStatus(bill.Amount, total, bill.DueDate, today)
		if status != models.BillStatusOverdue {
			return nil
		}
		if err := tx.Model(&models.Bill{}).
			Where("id = ?", bill.ID).
			Update("status", status).Error; err != nil {
			return err
		}
		bill.Status = status
		swept = &bill
		return nil
	})
	if err != nil {
		return err
	}
	if swept == nil {
		return nil
	}

	// Dispatch after commit; the dispatcher dedupes on (bill, type) so a
	// repeated sweep run does not re-send.
	_, err = s.notifier.NotifyOverdue(swept)
	return err
}
