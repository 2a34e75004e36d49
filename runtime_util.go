package walnats

import "runtime"

// yieldToScheduler gives other goroutines a chance to run, mirroring the
// asyncio.sleep(0) yield point between each acquire-release cycle of the
// priority gate.
func yieldToScheduler() {
	runtime.Gosched()
}
