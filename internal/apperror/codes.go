package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Hermes-specific error codes
const (
	// Daemon event channel errors
	CodeChannelConnectionFailed Code = "CHANNEL_CONNECTION_FAILED"
	CodeChannelDecodeError      Code = "CHANNEL_DECODE_ERROR"
	CodeChannelUnknownTopic     Code = "CHANNEL_UNKNOWN_TOPIC"
	CodeChannelSubscribeFailed  Code = "CHANNEL_SUBSCRIBE_FAILED"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Price feed (BitMEX) errors
	CodePriceFeedConnectionFailed Code = "PRICE_FEED_CONNECTION_FAILED"
	CodePriceFeedDecodeError      Code = "PRICE_FEED_DECODE_ERROR"
	CodePriceFeedSubscribeFailed  Code = "PRICE_FEED_SUBSCRIBE_FAILED"

	// Version compatibility errors
	CodeVersionLookupFailed  Code = "VERSION_LOOKUP_FAILED"
	CodeReleaseLookupFailed  Code = "RELEASE_LOOKUP_FAILED"
	CodeInvalidVersionString Code = "INVALID_VERSION_STRING"
	CodeGithubAPIError       Code = "GITHUB_API_ERROR"
	CodeGithubRateLimited    Code = "GITHUB_RATE_LIMITED"

	// Offer projection errors
	CodeInvalidOffer          Code = "INVALID_OFFER"
	CodeOfferProjectionFailed Code = "OFFER_PROJECTION_FAILED"

	// Connectivity monitor errors
	CodeUnknownAlert        Code = "UNKNOWN_ALERT"
	CodeNotifierUnavailable Code = "NOTIFIER_UNAVAILABLE"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
