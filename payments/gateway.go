package payments

// Intent is the subset of a provider payment intent the booking flow needs.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// IntentSucceeded is the only status that permits booking confirmation.
const IntentSucceeded = "succeeded"

// Gateway abstracts the payment provider. Amounts are integer minor
// currency units (cents), which is what providers accept on the wire.
type Gateway interface {
	CreateIntent(amount int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(id string) (*Intent, error)
	Refund(intentID string) error
}
