//go:build !linux && !windows

package bridge

// threadID reports 0 where no thread id is available; OnUIThread then
// falls back to counting Dispatch calls in progress.
func threadID() int64 { return 0 }
