/*
Package workers sizes worker pools for containerized deployments.

runtime.NumCPU reports the host's CPU count, which in Kubernetes can be far
above the pod's cgroup quota. Go 1.19+ folds the quota into GOMAXPROCS, so
pool sizes here derive from GOMAXPROCS instead:

	// tag-reading pool during a library scan
	numWorkers := workers.ForIO(16)

ForCPU uses one worker per CPU, ForIO two (workers can block on disk while
others run), ForMixed one and a half. Count takes an explicit multiplier.
Every function caps the result at the given limit (0 means uncapped) and
honors a SCANNER_WORKERS environment override, which operators use to pin
concurrency while debugging scans:

	env:
	- name: SCANNER_WORKERS
	  value: "4"

All functions are safe for concurrent use.
*/
package workers
