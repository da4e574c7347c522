package model

import "time"

// PurchaseRequest is a queued purchase or refund.  A positive Quantity
// buys tickets, a negative one refunds them.  Requests exist only while
// they wait in the order queue.
type PurchaseRequest struct {
    ID               string
    UserID           uint64
    TrainID          TrainID
    DepartureTime    time.Time
    DepartureStation StationID
    Quantity         int
    Priority         int
}

// IsPurchase reports whether the request buys tickets.
func (r PurchaseRequest) IsPurchase() bool { return r.Quantity > 0 }

// Count returns the number of tickets the request moves.
func (r PurchaseRequest) Count() int {
    if r.Quantity < 0 {
        return -r.Quantity
    }
    return r.Quantity
}
