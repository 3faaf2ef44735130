// Package parallel contains the bounded worker pool used to score k-best lists.
package parallel

import "runtime"
import "sync"
import "sync/atomic"

import "github.com/klauspost/cpuid/v2"

// Threads is the default number of worker goroutines: the logical cores
// reported by cpuid, falling back to the Go runtime when cpuid knows nothing.
func Threads() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// CPU describes the processor for startup banners
func CPU() string {
	if cpuid.CPU.BrandName != "" {
		return cpuid.CPU.BrandName
	}
	return runtime.GOARCH
}

// ForEach calls body for every i in [0, length) using at most limit goroutines.
// With limit <= 1 the loop runs in order on the calling goroutine.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit > length {
		limit = length
	}
	if limit <= 1 {
		for i := 0; i < length; i++ {
			body(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(limit)
	for n := 0; n < limit; n++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= length {
					return
				}
				body(i)
			}
		}()
	}
	wg.Wait()
}
