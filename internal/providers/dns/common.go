package dns

import (
	"errors"
	"net"
	"strings"

	"github.com/aws/smithy-go"
)

var retryableCodes = map[string]bool{
	"Throttling":               true,
	"ThrottlingException":      true,
	"PriorRequestNotComplete":  true,
	"RequestLimitExceeded":     true,
	"ServiceUnavailable":       true,
	"InternalError":            true,
	"RequestTimeout":           true,
	"RequestTimeoutException":  true,
	"TooManyRequestsException": true,
	"SlowDown":                 true,
}

func IsRetryableDNSError(err error) bool {
	if err == nil {
		return false
	}

	if errs, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range errs.Unwrap() {
			if IsRetryableDNSError(e) {
				return true
			}
		}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if retryableCodes[apiErr.ErrorCode()] {
			return true
		}
		if apiErr.ErrorFault() == smithy.FaultServer {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"rate exceeded",
		"rate limit",
		"too many requests",
		"service unavailable",
		"internal server error",
		"bad gateway",
		"gateway timeout",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
