package apperr

const (
	// Auth / token
	CodeMissingToken  = "AUTH_MISSING_TOKEN"
	CodeInvalidToken  = "AUTH_INVALID_TOKEN"
	CodeTokenExpired  = "AUTH_TOKEN_EXPIRED"
	CodeStaleRefresh  = "AUTH_STALE_REFRESH_TOKEN"
	CodeTokenNotFound = "AUTH_TOKEN_NOT_FOUND"

	// OAuth providers
	CodeMissingAuthCode     = "OAUTH_MISSING_AUTHORIZATION_CODE"
	CodeMissingProviderID   = "OAUTH_MISSING_PROVIDER_USER_ID"
	CodeExchangeFailed      = "OAUTH_EXCHANGE_FAILED"
	CodeUnlinkFailed        = "OAUTH_UNLINK_FAILED"
	CodeMissingRefreshToken = "OAUTH_MISSING_REFRESH_TOKEN"
	CodeUnsupportedProvider = "OAUTH_UNSUPPORTED_PROVIDER"

	// Members
	CodeMemberNotFound    = "MEMBER_NOT_FOUND"
	CodeAlreadyDeleted    = "MEMBER_ALREADY_DELETED"
	CodeDuplicateNickname = "MEMBER_DUPLICATE_NICKNAME"
	CodeDuplicateEmail    = "MEMBER_DUPLICATE_EMAIL"

	// Blocks
	CodeAlreadyBlocked = "BLOCK_ALREADY_EXISTS"
	CodeNotBlocked     = "BLOCK_NOT_FOUND"

	// Infrastructure
	CodeStorageFailure = "STORAGE_FAILURE"
	CodeInternal       = "INTERNAL_ERROR"
)
