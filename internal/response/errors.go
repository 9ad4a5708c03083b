package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrMemberAccessOnly ErrCode = "MEMBER_ACCESS_ONLY"
	ErrAuthorAccessOnly ErrCode = "AUTHOR_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrQuizNotAvailable  ErrCode = "QUIZ_NOT_AVAILABLE"
	ErrQuizNotPublished  ErrCode = "QUIZ_NOT_PUBLISHED"
	ErrNotQuizAuthor     ErrCode = "NOT_QUIZ_AUTHOR"
	ErrQuizNotSavable    ErrCode = "QUIZ_NOT_SAVABLE"
	ErrQuizInvalid       ErrCode = "QUIZ_INVALID"
	ErrQuizNotDraft      ErrCode = "QUIZ_NOT_DRAFT"
	ErrMinOptions        ErrCode = "MIN_OPTIONS"
	ErrFixedOptions      ErrCode = "FIXED_OPTIONS"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"
	ErrSessionNotStarted ErrCode = "SESSION_NOT_STARTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrMemberAccessOnly:
		return "This resource is restricted to members."
	case ErrAuthorAccessOnly:
		return "This resource is restricted to quiz authors."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrQuizNotAvailable:
		return "This quiz is not currently available."
	case ErrQuizNotPublished:
		return "This quiz has not been published."
	case ErrNotQuizAuthor:
		return "You are not the author of this quiz."
	case ErrQuizNotSavable:
		return "A quiz needs a title and at least one question before it can be saved."
	case ErrQuizInvalid:
		return "One or more questions are incomplete or invalid."
	case ErrQuizNotDraft:
		return "This quiz is not in DRAFT status."
	case ErrMinOptions:
		return "A multiple-choice question keeps at least 2 options."
	case ErrFixedOptions:
		return "Options can only be edited on multiple-choice questions."
	case ErrAlreadySubmitted:
		return "This quiz has already been submitted."
	case ErrSessionNotStarted:
		return "You have not started this quiz yet."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
