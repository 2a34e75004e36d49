package walnats

// ExecuteIn controls where an Actor's handler runs.
type ExecuteIn string

const (
	// ExecuteInline runs the handler on the goroutine that dispatched the
	// message. Use it for fast or already-concurrent handlers.
	ExecuteInline ExecuteIn = "inline"

	// ExecuteInThreadPool runs the handler on a bounded worker-goroutine
	// pool shared by every actor configured this way. Use it for slow,
	// blocking (non-cooperative) handlers so they don't stall the pull
	// loop's own scheduling.
	ExecuteInThreadPool ExecuteIn = "thread-pool"

	// ExecuteInProcessPool runs the handler in this same process, on its
	// own goroutine, bounded by a concurrency limit (WithMaxProcesses) that
	// is separate from the thread-pool one. It does not start a subprocess
	// and gives no OS-level isolation: a handler that crashes or leaks
	// memory affects the whole process.
	ExecuteInProcessPool ExecuteIn = "process-pool"
)
