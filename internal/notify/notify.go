package notify

import (
	"context"
	"log"

	"github.com/avaldes-dev/condoreserve/internal/kafka"
)

// Sender fans reservation events out to residents. Delivery is a
// collaborator concern; this stub logs what a mail/push integration would
// send.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	log.Printf("notify requester %d: %s for reservation %d (status %s)", event.RequesterID, event.Type, event.ReservationID, event.Status)
	return nil
}
