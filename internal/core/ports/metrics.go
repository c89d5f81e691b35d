package ports

// Metrics receives counters from the use cases. Label values are free-form
// strings such as "applied", "rejected" or "skipped".
type Metrics interface {
	TransitionObserved(source, result string)
	WebhookEventObserved(outcome string)
	CourierPushObserved(outcome string)
	NotificationObserved(channel, outcome string)
}
