package apperr

import "net/http"

// Stable error codes. API clients match on these, never on messages.
const (
	CodeDuplicateSubmission     = "DUPLICATE_SUBMISSION"
	CodeInvalidQuantity         = "INVALID_QUANTITY"
	CodeInvalidReadyDate        = "INVALID_READY_DATE"
	CodeInvalidDeliveryDate     = "INVALID_DELIVERY_DATE"
	CodeAssignmentNotFound      = "ASSIGNMENT_NOT_FOUND"
	CodeOrderNotFound           = "ORDER_NOT_FOUND"
	CodeInvalidOrderStatus      = "INVALID_ORDER_STATUS"
	CodeOverAllocation          = "OVER_ALLOCATION"
	CodeAlreadyAllocated        = "ALREADY_ALLOCATED"
	CodeFarmerNotFound          = "FARMER_NOT_FOUND"
	CodeFarmerNotActive         = "FARMER_NOT_ACTIVE"
	CodeInvalidAssignmentStatus = "INVALID_ASSIGNMENT_STATUS"
	CodeBuyerSuspended          = "BUYER_SUSPENDED"
	CodeBuyerNotActive          = "BUYER_NOT_ACTIVE"
	CodeDuplicateUser           = "DUPLICATE_USER"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeAccountNotActive        = "ACCOUNT_NOT_ACTIVE"
	CodeAddressNotFound         = "ADDRESS_NOT_FOUND"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeInvalidUserStatus       = "INVALID_USER_STATUS"
	CodeTokenInvalid            = "TOKEN_INVALID"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeForbidden               = "FORBIDDEN"
)

// Error is a domain rule violation. It is raised at the point of detection
// and serialized unchanged by the HTTP error handler.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, code, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

func Forbidden(code, message string) *Error {
	return New(http.StatusForbidden, code, message)
}
