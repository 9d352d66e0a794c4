package constants

import "time"

const (
	AppName = "dnswatch"

	DefaultStateFile   = "previous_route53_scan.json"
	DefaultLogFile     = "route53_monitor.log"
	DefaultLastRunFile = "last_run.txt"
	DefaultEnvFile     = ".env"

	DefaultInterval    = 3 * time.Second
	DefaultHTTPTimeout = 10 * time.Second

	DefaultRetryAttempts   = 3
	DefaultRetryDelay      = 500 * time.Millisecond
	DefaultRetryMaxDelay   = 30 * time.Second
	DefaultRetryMultiplier = 2.0

	LastRunLayout = "2006-01-02 15:04:05"

	FilePermissionOwnerRW = 0o600
	FilePermissionShared  = 0o644
)
