package response

import (
	"net/http"

	"neontask/internal/domain"
)

// StatusOf 业务错误类型 -> HTTP 状态码
func StatusOf(k domain.Kind) int {
	switch k {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindInvalidCredentials, domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// 固定文案，不带内部细节
const (
	MsgEndpointNotFound = "ENDPOINT NOT FOUND"
	MsgMalformedRequest = "VALIDATION FAILED: MALFORMED REQUEST"
	MsgBodyTooLarge     = "VALIDATION FAILED: REQUEST BODY TOO LARGE"
	MsgServerBusy       = "SYSTEM ERROR: SERVER BUSY"
	MsgTimeout          = "SYSTEM ERROR: REQUEST TIMEOUT"
	MsgInternal         = "SYSTEM ERROR"
)
