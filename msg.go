package nats

// Msg is delivered to subscription handlers and returned by Request. Data
// is a view into the reader loop's receive buffer for the duration of the
// dispatch call; a handler that retains Data or Header beyond its own
// return must copy them first.
type Msg struct {
	Subject string
	Reply   string
	Header  Header
	Data    []byte
	Sub     *Subscription
}
