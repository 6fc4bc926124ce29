package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrEmployeeAccessOnly ErrCode = "EMPLOYEE_ACCESS_ONLY"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Leave workflow ────────────────────────────────────────────────
	ErrLeaveNotFound   ErrCode = "LEAVE_NOT_FOUND"
	ErrLeaveTooLong    ErrCode = "LEAVE_TOO_LONG"
	ErrLeaveNotDecided ErrCode = "LEAVE_NOT_DECIDABLE"

	// ─── Question bank ─────────────────────────────────────────────────
	ErrQuestionInUse ErrCode = "QUESTION_IN_USE"

	// ─── Test sessions ─────────────────────────────────────────────────
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrAlreadyStarted        ErrCode = "ALREADY_STARTED"
	ErrAlreadySubmitted      ErrCode = "ALREADY_SUBMITTED"
	ErrSessionNotActive      ErrCode = "SESSION_NOT_ACTIVE"
	ErrSessionExpired        ErrCode = "SESSION_EXPIRED"
	ErrUnknownQuestion       ErrCode = "UNKNOWN_QUESTION"
	ErrResultNotFound        ErrCode = "RESULT_NOT_FOUND"
	ErrFullscreenRequired    ErrCode = "FULLSCREEN_REQUIRED"

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
		return "Invalid email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrEmployeeAccessOnly:
		return "This resource is restricted to employees."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Leave workflow ────────────────────────────────────────────────
	case ErrLeaveNotFound:
		return "Leave request not found."
	case ErrLeaveTooLong:
		return "The requested leave exceeds the maximum allowed days."
	case ErrLeaveNotDecided:
		return "This leave request cannot be decided in its current status."

	// ─── Question bank ─────────────────────────────────────────────────
	case ErrQuestionInUse:
		return "The question has been used in a test session and cannot be deleted."

	// ─── Test sessions ─────────────────────────────────────────────────
	case ErrInsufficientQuestions:
		return "Not enough questions in the bank to provision this test."
	case ErrAlreadyStarted:
		return "The test session has already been started."
	case ErrAlreadySubmitted:
		return "The test session has already been submitted."
	case ErrSessionNotActive:
		return "The test session is not active."
	case ErrSessionExpired:
		return "The test session time limit has expired."
	case ErrUnknownQuestion:
		return "The question does not belong to this test session."
	case ErrResultNotFound:
		return "No result is available for this test session."
	case ErrFullscreenRequired:
		return "Fullscreen acknowledgement is required to start this test."

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
