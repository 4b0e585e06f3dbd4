package services

// Notifier publishes collection-changed notifications after successful
// writes. The websocket hub implements it; tests use a recorder.
type Notifier interface {
	Publish(collection string)
}

type noopNotifier struct{}

func (noopNotifier) Publish(string) {}
