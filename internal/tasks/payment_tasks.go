package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/services"
)

// VerifyPendingPaymentsTaskDef sweeps transactions that never received a
// provider callback and re-polls the gateway for their final status. Hosted
// checkouts routinely strand pending rows when the user abandons the page.
type VerifyPendingPaymentsTaskDef struct {
	payments *services.PaymentService
}

// TaskID returns the unique identifier for this task
func (t *VerifyPendingPaymentsTaskDef) TaskID() string {
	return "verify_pending_payments"
}

// HandleExecution polls the gateway for every stale non-terminal transaction
func (t *VerifyPendingPaymentsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	minAge := 10 * time.Minute
	if v, ok := task.Arguments["min_age_minutes"].(float64); ok && v > 0 {
		minAge = time.Duration(v) * time.Minute
	}
	cutoff := time.Now().Add(-minAge)

	var stale []models.Transaction
	err := db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing}, cutoff).
		Order("created_at asc").Limit(200).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stale transactions: %w", err)
	}

	verified := 0
	failures := 0
	for i := range stale {
		if ctx.Err() != nil {
			break
		}
		if err := t.payments.VerifyPending(ctx, &stale[i]); err != nil {
			log.Printf("[Task: %s] verify failed for order %s: %v", t.TaskID(), stale[i].OrderID, err)
			failures++
			continue
		}
		verified++
	}

	return map[string]interface{}{
		"status":   "success",
		"checked":  len(stale),
		"verified": verified,
		"failures": failures,
	}, nil
}

// ProcessPendingRefundsTaskDef retries cancellation refunds that are still
// pending, e.g. because the gateway was unreachable when the cancellation
// was recorded.
type ProcessPendingRefundsTaskDef struct {
	cancellations *services.CancellationService
}

// TaskID returns the unique identifier for this task
func (t *ProcessPendingRefundsTaskDef) TaskID() string {
	return "process_pending_refunds"
}

// HandleExecution settles every pending refund through its original gateway
func (t *ProcessPendingRefundsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var pending []models.Cancellation
	err := db.WithContext(ctx).
		Where("refund_status = ? AND refund_amount > 0", models.RefundStatusPending).
		Order("created_at asc").Limit(100).
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending refunds: %w", err)
	}

	processed := 0
	failures := 0
	for _, cancellation := range pending {
		if ctx.Err() != nil {
			break
		}
		if _, err := t.cancellations.ProcessRefund(ctx, cancellation.ID); err != nil {
			log.Printf("[Task: %s] refund failed for cancellation %d: %v", t.TaskID(), cancellation.ID, err)
			failures++
			continue
		}
		processed++
	}

	return map[string]interface{}{
		"status":    "success",
		"checked":   len(pending),
		"processed": processed,
		"failures":  failures,
	}, nil
}
