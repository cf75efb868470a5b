package tpool

// job is one unit of work on a pool's queue: a script
// plus a monotonic job id (zero for detached jobs, which carry no result).
type job struct {
	id       uint64
	detached bool
	script   string
}

// Result is a completed job's outcome, applied to the collecting caller's
// interpreter (errorCode/errorInfo included) by Collect.
type Result struct {
	Code      string // "OK" or "ERROR"
	Value     string
	ErrorCode string
	ErrorInfo string
}
