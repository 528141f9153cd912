// internal/provider/types.go
package provider

import "time"

// Role identifies who authored a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents one entry in the conversation transcript
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// CallOptions holds the parameters for one AI invocation.
// Constructed per call from config; the pipeline decrements the retry
// budget on its own copy, never on a shared value.
type CallOptions struct {
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	Retries     int
}

// Health represents the liveness of the sidecar capability
type Health int32

const (
	HealthChecking Health = iota
	HealthHealthy
	HealthUnhealthy
)

func (h Health) String() string {
	switch h {
	case HealthChecking:
		return "checking"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}
