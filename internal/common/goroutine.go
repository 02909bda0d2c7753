package common

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

// goroutineCounter tracks goroutines spawned through SafeGo
var goroutineCounter int64

// GetGoroutineCount returns the number of goroutines spawned via SafeGo,
// reported on the status endpoint
func GetGoroutineCount() int64 {
	return atomic.LoadInt64(&goroutineCounter)
}

// SafeGo runs fn in a goroutine with panic recovery. A panicking
// pipeline worker or connection watcher is logged and dropped instead
// of crashing the service.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	atomic.AddInt64(&goroutineCounter, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)

				if logger != nil {
					logger.Error().
						Str("goroutine", name).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(buf[:n])).
						Msg("Recovered from goroutine panic")
				} else {
					fmt.Fprintf(os.Stderr, "panic in goroutine %s: %v\n%s\n", name, r, string(buf[:n]))
				}
			}
		}()

		fn()
	}()
}
