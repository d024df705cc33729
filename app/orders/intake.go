// Package orders records confirmed orders in the ledger.
package orders

import (
	"log/slog"

	"github.com/CodrCam/avalanchehour-shop/models"
)

type Ledger interface {
	Upsert(order *models.Order) (bool, error)
}

// Notifier delivers the operator notification for a new order.
type Notifier interface {
	NotifyNewOrder(order *models.Order) error
}

// Intake is the single write path for the order ledger. Both writers
// in the happy path go through it: the client confirmation endpoint
// and the payment webhook. Either may arrive first, or alone; the
// upsert converges them on one row, and the operator notification
// fires exactly once per order id, on the write that created the row.
type Intake struct {
	ledger   Ledger
	notifier Notifier
	log      *slog.Logger
}

func NewIntake(ledger Ledger, notifier Notifier, log *slog.Logger) *Intake {
	return &Intake{ledger: ledger, notifier: notifier, log: log}
}

// Record upserts the order and reports whether this call created the
// row. The notification is best effort and fire-and-forget: its
// failure never fails the surrounding request.
func (i *Intake) Record(order *models.Order) (bool, error) {
	isNew, err := i.ledger.Upsert(order)
	if err != nil {
		return false, err
	}
	if isNew && i.notifier != nil {
		o := *order
		go func() {
			if err := i.notifier.NotifyNewOrder(&o); err != nil {
				i.log.Warn("order notification failed", "order_id", o.OrderID, "error", err)
			}
		}()
	}
	return isNew, nil
}
