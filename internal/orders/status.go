package orders

import "fmt"

type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Statuses in pipeline order; cancelled is terminal and sits outside the pipeline.
var Statuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

var validNext = map[Status]map[Status]bool{
	StatusPending:        {StatusAccepted: true, StatusCancelled: true},
	StatusAccepted:       {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing:      {StatusOutForDelivery: true},
	StatusOutForDelivery: {StatusDelivered: true},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

func (s Status) Terminal() bool { return len(validNext[s]) == 0 }
