// Package service holds the application services that sit between the HTTP
// handlers and the booking engine: trip event publishing and user accounts.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/model"
	q "github.com/iliyamo/railway-ticketing/internal/queue"
)

// Publisher sends a TicketEvent to RabbitMQ for every fulfilled purchase or
// refund.  It satisfies booking.Notifier.  Each publish dials its own
// connection; errors are logged and returned so the engine can ignore them.
type Publisher struct {
	URL string
}

// NewPublisher returns a Publisher for url, or nil when url is empty; the
// engine accepts a nil notifier.
func NewPublisher(url string) booking.Notifier {
	if url == "" {
		return nil
	}
	return &Publisher{URL: url}
}

// EventFromResult builds the event published for a fulfilled result.
func EventFromResult(res booking.Result) q.TicketEvent {
	kind := q.KindPurchase
	if !res.Request.IsPurchase() {
		kind = q.KindRefund
	}
	return q.NewTicketEvent(q.TicketEvent{
		Kind:             kind,
		RequestID:        res.Request.ID,
		UserID:           res.Request.UserID,
		TrainID:          string(res.Trip.TrainID),
		DepartureStation: int(res.Trip.DepartureStation),
		ArrivalStation:   int(res.Trip.ArrivalStation),
		DepartureTime:    model.FormatMoment(res.Trip.DepartureTime),
		ArrivalTime:      model.FormatMoment(res.Trip.ArrivalTime),
		Tickets:          res.Trip.TicketCount,
		Price:            res.Trip.Price,
	})
}

// Notify publishes the result's event to the trips queue.  Messages are
// marked persistent.
func (p *Publisher) Notify(ctx context.Context, res booking.Result) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(q.TripQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(EventFromResult(res))
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.TripQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
