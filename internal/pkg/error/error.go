package error

import (
	"errors"
	"net/http"
)

// Error 對外回應的錯誤：HTTP 狀態、業務碼、短代號與說明
type Error struct {
	httpCode  int
	errorCode int
	errorMsg  string
	errorDesc string
	cause     error
}

func New(httpCode, errorCode int, errorMsg string, errorDesc string) *Error {
	return &Error{
		httpCode:  httpCode,
		errorCode: errorCode,
		errorMsg:  errorMsg,
		errorDesc: errorDesc,
	}
}

// From 非 *Error 一律包成 500；原錯誤只保留在 Unwrap，不進回應內容
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	wrapped := InternalServer("unexpected error")
	wrapped.cause = err
	return wrapped
}

func (e *Error) HttpCode() int     { return e.httpCode }
func (e *Error) ErrorCode() int    { return e.errorCode }
func (e *Error) ErrorDesc() string { return e.errorDesc }
func (e *Error) Error() string     { return e.errorMsg }
func (e *Error) Unwrap() error     { return e.cause }

// Is 同業務碼視為同一種錯誤
func (e *Error) Is(target error) bool {
	var other *Error
	return errors.As(target, &other) && other.errorCode == e.errorCode
}

func pick(def int, override []int) int {
	if len(override) > 0 {
		return override[0]
	}
	return def
}

// ---- 400 ----

func ValidateErr(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_BODY, "bad-request/body", errorDesc)
}

func ValidatePathParamsErr(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_PARAMS, "bad-request/params", errorDesc)
}

func BadRequest(errorDesc string, errorCode ...int) *Error {
	return New(http.StatusBadRequest, pick(BAD_REQUEST_BODY, errorCode), "bad-request", errorDesc)
}

func BadRequestBody(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_BODY, "bad-request-body", errorDesc)
}

func BadRequestParams(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_PARAMS, "bad-request-params", errorDesc)
}

// MissingFields desc 直接列出缺漏欄位
func MissingFields(errorDesc string) *Error {
	return New(http.StatusBadRequest, MISSING_FIELDS, "missing_fields", errorDesc)
}

// ---- 401 / 403 / 404 / 409 / 429 ----

func Unauthorized(errorDesc string, errorCode ...int) *Error {
	return New(http.StatusUnauthorized, pick(UNAUTHORIZED, errorCode), "unauthorized", errorDesc)
}

func Forbidden(errorDesc string, errorCode ...int) *Error {
	return New(http.StatusForbidden, pick(FORBIDDEN, errorCode), "forbidden", errorDesc)
}

func OwnerMismatch(errorDesc string) *Error {
	return New(http.StatusForbidden, OWNER_MISMATCH, "owner-mismatch", errorDesc)
}

func NotFound(errorDesc string, errorCode ...int) *Error {
	return New(http.StatusNotFound, pick(NOT_FOUND, errorCode), "not-found", errorDesc)
}

func Conflict(errorDesc string) *Error {
	return New(http.StatusConflict, CONFLICT, "conflict", errorDesc)
}

func RateLimitExceeded(errorDesc string) *Error {
	return New(http.StatusTooManyRequests, RATE_LIMIT_EXCEEDED, "rate-limit-exceeded", errorDesc)
}

// ---- 5xx ----

func InternalServer(errorDesc string) *Error {
	return New(http.StatusInternalServerError, INTERNAL_ERROR, "internal-server-error", errorDesc)
}

// DatabaseError 資料毀損或寫入失敗
func DatabaseError(errorDesc string) *Error {
	return New(http.StatusInternalServerError, DATABASE_ERROR, "database-error", errorDesc)
}

func ServiceUnavailable(errorDesc string) *Error {
	return New(http.StatusServiceUnavailable, SERVICE_UNAVAILABLE, "service-unavailable", errorDesc)
}

// StorageUnavailable KV 無法連線；代表「目前無法確認」，不是「確認無效」
func StorageUnavailable(errorDesc string) *Error {
	return New(http.StatusServiceUnavailable, STORAGE_UNAVAILABLE, "storage-unavailable", errorDesc)
}

func StorageTimeout(errorDesc string) *Error {
	return New(http.StatusServiceUnavailable, STORAGE_TIMEOUT, "storage-timeout", errorDesc)
}

var byStatus = map[int]func(string) *Error{
	http.StatusBadRequest:         func(d string) *Error { return BadRequest(d) },
	http.StatusUnauthorized:       func(d string) *Error { return Unauthorized(d) },
	http.StatusForbidden:          func(d string) *Error { return Forbidden(d) },
	http.StatusNotFound:           func(d string) *Error { return NotFound(d) },
	http.StatusConflict:           Conflict,
	http.StatusTooManyRequests:    RateLimitExceeded,
	http.StatusServiceUnavailable: ServiceUnavailable,
}

// MapHttpStatusToError handler 只設了狀態碼時轉成對應錯誤；未列出的一律 500
func MapHttpStatusToError(status int, desc string) *Error {
	if build, ok := byStatus[status]; ok {
		return build(desc)
	}
	return InternalServer(desc)
}
