package enums

// OutboxEventType names the domain events recorded in the outbox.
type OutboxEventType string

const (
	EventOrderPlaced    OutboxEventType = "order.placed"
	EventOrderDelivered OutboxEventType = "order.delivered"
	EventOrderSettled   OutboxEventType = "order.settled"
	EventOrderCancelled OutboxEventType = "order.cancelled"
	EventOrderUpdated   OutboxEventType = "order.updated"
)

func (o OutboxEventType) String() string {
	return string(o)
}

// OutboxAggregateType names the aggregate an event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
)

func (o OutboxAggregateType) String() string {
	return string(o)
}
