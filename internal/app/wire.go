package app

import (
	"hushwire/internal/domain"
	"hushwire/internal/relay"
	identitysvc "hushwire/internal/services/identity"
	messagesvc "hushwire/internal/services/message"
	prekeysvc "hushwire/internal/services/prekey"
	sessionsvc "hushwire/internal/services/session"
	"hushwire/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Identities domain.IdentityService
	PreKeys    domain.PreKeyService
	Sessions   domain.SessionService
	Messages   domain.MessageService
	Relay      domain.RelayClient
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) *Wire {
	identityStore := store.NewIdentityFileStore(cfg.Home)
	prekeyStore := store.NewPreKeyFileStore(cfg.Home)
	bundleStore := store.NewBundleFileStore(cfg.Home)
	sessionStore := store.NewSessionFileStore(cfg.Home)
	ratchetStore := store.NewRatchetFileStore(cfg.Home)

	rc := relay.NewHTTP(cfg.RelayURL, cfg.HTTP)

	identitySvc := identitysvc.New(identityStore)
	prekeySvc := prekeysvc.New(identityStore, prekeyStore, bundleStore)
	sessionSvc := sessionsvc.New(identityStore, sessionStore, ratchetStore, rc)
	messageSvc := messagesvc.New(identityStore, prekeyStore, ratchetStore, sessionStore, rc)

	return &Wire{
		Identities: identitySvc,
		PreKeys:    prekeySvc,
		Sessions:   sessionSvc,
		Messages:   messageSvc,
		Relay:      rc,
	}
}
