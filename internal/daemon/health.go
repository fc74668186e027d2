package daemon

import (
	"encoding/json"
	"runtime"
	"sync"
	"time"
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthStatus is the outcome of running every registered check.
type HealthStatus struct {
	Status     string        `json:"status"`
	LastCheck  time.Time     `json:"last_check"`
	Goroutines int           `json:"goroutines"`
	MemoryMB   float64       `json:"memory_mb"`
	Checks     []CheckResult `json:"checks"`
}

type namedCheck struct {
	name  string
	check func() error
}

// HealthChecker runs named checks in registration order, such as "is the
// reminder file readable" or "is the notifier available".
type HealthChecker struct {
	mu     sync.RWMutex
	checks []namedCheck
}

// NewHealthChecker creates an empty health checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

// AddCheck registers check under name, replacing any check of that name.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.checks {
		if h.checks[i].name == name {
			h.checks[i].check = check
			return
		}
	}
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// RemoveCheck removes a check.
func (h *HealthChecker) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.checks {
		if h.checks[i].name == name {
			h.checks = append(h.checks[:i], h.checks[i+1:]...)
			return
		}
	}
}

// Run executes every check.
func (h *HealthChecker) Run() []CheckResult {
	h.mu.RLock()
	checks := append([]namedCheck(nil), h.checks...)
	h.mu.RUnlock()

	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		result := CheckResult{Name: c.name, Healthy: true}
		if err := c.check(); err != nil {
			result.Healthy = false
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

// Check runs every check and summarizes the process state.
func (h *HealthChecker) Check() *HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	results := h.Run()
	status := "healthy"
	for _, r := range results {
		if !r.Healthy {
			status = "unhealthy"
			break
		}
	}

	return &HealthStatus{
		Status:     status,
		LastCheck:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
		MemoryMB:   float64(memStats.Alloc) / 1024 / 1024,
		Checks:     results,
	}
}

// IsHealthy returns true if every check passes.
func (h *HealthChecker) IsHealthy() bool {
	return h.Check().Status == "healthy"
}

// JSON returns the health status as JSON.
func (h *HealthChecker) JSON() ([]byte, error) {
	return json.MarshalIndent(h.Check(), "", "  ")
}
