package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Daemon event channel errors
	CodeChannelConnectionFailed: "Failed to connect to daemon event channel",
	CodeChannelDecodeError:      "Failed to decode event payload",
	CodeChannelUnknownTopic:     "Event received for unknown topic",
	CodeChannelSubscribeFailed:  "Failed to subscribe to topic",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Price feed (BitMEX) errors
	CodePriceFeedConnectionFailed: "Failed to connect to price feed",
	CodePriceFeedDecodeError:      "Failed to decode price feed frame",
	CodePriceFeedSubscribeFailed:  "Failed to subscribe to price feed",

	// Version compatibility errors
	CodeVersionLookupFailed:  "Failed to look up daemon version",
	CodeReleaseLookupFailed:  "Failed to look up latest release",
	CodeInvalidVersionString: "Invalid semantic version string",
	CodeGithubAPIError:       "GitHub API error",
	CodeGithubRateLimited:    "GitHub rate limit exceeded",

	// Offer projection errors
	CodeInvalidOffer:          "Invalid offer data",
	CodeOfferProjectionFailed: "Offer projection failed",

	// Connectivity monitor errors
	CodeUnknownAlert:        "Unknown alert identifier",
	CodeNotifierUnavailable: "Alert notifier unavailable",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
