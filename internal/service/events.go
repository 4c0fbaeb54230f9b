package service

// Events pushed to connected dashboards after a commit.
const (
	EventReportSubmitted    = "report.submitted"
	EventOrderStatusChanged = "order.status_changed"
	EventStockChanged       = "stock.changed"
)

// EventPublisher fans out committed changes. Publish must not block.
type EventPublisher interface {
	Publish(event string, data any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) {}

// NoopPublisher discards every event.
func NoopPublisher() EventPublisher { return noopPublisher{} }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
