package ports

import "context"

// CredentialProvider is the injected capability holding the service
// credential attached to outbound platform calls. The transport layer
// depends on this interface, never on ambient storage.
type CredentialProvider interface {
	// Get returns the stored credential, or empty when none is set.
	Get(ctx context.Context) (string, error)
	// Set stores the credential. When remember is true the long-lived
	// location is used; otherwise the session-scoped one.
	Set(ctx context.Context, credential string, remember bool) error
	// Clear removes the credential from both locations. Called on
	// unauthorized responses from the platform.
	Clear(ctx context.Context) error
}
