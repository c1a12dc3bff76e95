/*
Package memory wires the Go heap to container memory limits and provides
backpressure for the scanner.

Go detects cgroup CPU quotas (GOMAXPROCS) but not memory limits, so a pod
that tag-reads thousands of files can be OOM-killed before the garbage
collector ever feels pressure. [ConfigureFromEnv], called first thing in
main, closes that gap: it sets GOMEMLIMIT to MEMORY_RATIO (default 0.85)
of the MEMORY_LIMIT environment variable, leaving the remainder for
sqlite's CGO allocations, thumbnail decoding, and goroutine stacks. An
explicit GOMEMLIMIT wins over both. MEMORY_LIMIT is typically injected
via the Kubernetes Downward API:

	env:
	- name: MEMORY_LIMIT
	  valueFrom:
	    resourceFieldRef:
	      resource: limits.memory

GOMEMLIMIT is a soft limit: the collector works harder near it but the
process can still exceed it. For bulk work that should yield instead,
[Monitor] samples the heap on a timer and pauses workers above the
critical water mark until usage falls back below the high water mark:

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	// inside a scan worker
	if !monitor.WaitIfPaused() {
		return // monitor stopped, shut down
	}

The scanner's tag readers gate on WaitIfPaused between files.
*/
package memory
