package domain

import "context"

// RelayClient is how we talk to the relay server. The relay stores prekey
// bundles and queues opaque sealed envelopes per recipient.
type RelayClient interface {
	RegisterPreKeyBundle(ctx context.Context, bundle PreKeyBundle) error
	FetchPreKeyBundle(ctx context.Context, username Username) (PreKeyBundle, error)

	SendEnvelope(ctx context.Context, envelope Envelope) error
	FetchEnvelopes(ctx context.Context, username Username, limit int) ([]Envelope, error)
	AckEnvelopes(ctx context.Context, username Username, count int) error
}
