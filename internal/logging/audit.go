package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names an audit event.
type AuditEventType string

const (
	// Clone runs
	AuditCloneRun   AuditEventType = "clone_run"
	AuditCloneError AuditEventType = "clone_error"

	// Cache operations
	AuditCacheSet    AuditEventType = "cache_set"
	AuditCacheGet    AuditEventType = "cache_get"
	AuditCacheRemove AuditEventType = "cache_remove"
	AuditCacheClear  AuditEventType = "cache_clear"

	// Performance
	AuditPerfMetric AuditEventType = "perf_metric"
	AuditPerfSlow   AuditEventType = "perf_slow"
)

// AuditEvent is one line of the audit log.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`               // Unix milliseconds
	EventType  AuditEventType         `json:"event"`            // What happened
	Category   string                 `json:"cat,omitempty"`    // Log category
	RequestID  string                 `json:"req,omitempty"`    // Request correlation
	Target     string                 `json:"target,omitempty"` // File or cache entry
	Success    bool                   `json:"success"`          // Operation succeeded
	DurationMs int64                  `json:"dur_ms,omitempty"` // Duration in milliseconds
	Error      string                 `json:"error,omitempty"`  // Error message if failed
	Fields     map[string]interface{} `json:"fields,omitempty"` // Additional structured fields
	Message    string                 `json:"msg,omitempty"`    // Human-readable message
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile *os.File
	auditMu   sync.Mutex
)

// AuditLogger writes audit events, optionally tagged with a category.
type AuditLogger struct {
	category Category
}

// InitAudit opens <dir>/<date>_audit.log. It is a no-op unless debug mode
// is on.
func InitAudit() error {
	optsMu.RLock()
	o := opts
	optsMu.RUnlock()
	if !o.DebugMode {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil // Already initialized
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(o.Dir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns an audit logger without a category.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditFor returns an audit logger that tags events with category.
func AuditFor(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// Log writes an audit event as one JSON line.
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}
	if event.RequestID == "" {
		optsMu.RLock()
		event.RequestID = requestID
		optsMu.RUnlock()
	}

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.Write(append(data, '\n'))
	}
}

// CloneRun records one file clone.
func (a *AuditLogger) CloneRun(path string, composites, shared int, durationMs int64, err error) {
	event := AuditEvent{
		EventType:  AuditCloneRun,
		Target:     path,
		Success:    err == nil,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"composites": composites, "shared": shared},
	}
	if err != nil {
		event.EventType = AuditCloneError
		event.Error = err.Error()
		event.Fields = nil
	}
	a.Log(event)
}

// CacheOp records a cache operation on name.
func (a *AuditLogger) CacheOp(op AuditEventType, name string, err error) {
	event := AuditEvent{
		EventType: op,
		Target:    name,
		Success:   err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	a.Log(event)
}

// PerfMetric logs a performance metric; exceeding threshold (when > 0)
// records a perf_slow event instead.
func (a *AuditLogger) PerfMetric(operation string, durationMs int64, threshold int64) {
	eventType := AuditPerfMetric
	success := true
	if threshold > 0 && durationMs > threshold {
		eventType = AuditPerfSlow
		success = false
	}
	fields := map[string]interface{}{}
	if threshold > 0 {
		fields["threshold_ms"] = threshold
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     operation,
		DurationMs: durationMs,
		Success:    success,
		Fields:     fields,
		Message:    fmt.Sprintf("Perf: %s took %dms (threshold=%dms)", operation, durationMs, threshold),
	})
}
