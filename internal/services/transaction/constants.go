package transaction

// Default configuration values
const (
	DefaultMaxRetries = 3
)

// Gateway names recorded on transactions that never reach a provider.
const (
	GatewayInternal = "internal"
)
