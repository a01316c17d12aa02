package telemetry

// Span and attribute names used for checkout instrumentation.
const (
	SpanCheckoutSubmit = "checkout.submit"

	AttrOrderID = "order.id"
	AttrError   = "error"
)
