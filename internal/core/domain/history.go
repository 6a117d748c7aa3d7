package domain

import "time"

type HistoryAction string

const (
	HistoryOrderCreated         HistoryAction = "created"
	HistoryStatusChanged        HistoryAction = "status_changed"
	HistoryOrderCancelled       HistoryAction = "cancelled"
	HistoryOrderPaid            HistoryAction = "paid"
	HistoryOrderFulfilled       HistoryAction = "fulfilled"
	HistoryOrderUnfulfilled     HistoryAction = "unfulfilled"
	HistoryOrderArchived        HistoryAction = "archived"
	HistoryOrderUnarchived      HistoryAction = "unarchived"
	HistoryDiscountLimitReached HistoryAction = "discount_limit_reached"
	HistoryCorrectionReversal   HistoryAction = "correction_reversal"
	HistoryComment              HistoryAction = "comment"
)

// HistoryEntry is one append-only audit row; the timeline view is these
// rows (comments included) sorted descending by time.
type HistoryEntry struct {
	ID        uint64
	OrderID   uint64
	Action    HistoryAction
	Details   string
	Actor     string
	CreatedAt time.Time
}
