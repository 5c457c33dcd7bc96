package health

import "context"

// ConnectionChecker reports whether the game server connection is up. A
// missing connection only degrades readiness since the client may be between
// games.
type ConnectionChecker struct {
	Connected func() bool
}

func (ConnectionChecker) Name() string { return "connection" }

func (c ConnectionChecker) Check(ctx context.Context) CheckResult {
	if c.Connected != nil && c.Connected() {
		return CheckResult{Status: StatusHealthy, Message: "connected to game server"}
	}
	return CheckResult{Status: StatusDegraded, Message: "not connected to game server"}
}

// Pinger is satisfied by stores that can verify their backing database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ArchiveChecker verifies the game archive database is reachable.
type ArchiveChecker struct {
	Store Pinger
}

func (ArchiveChecker) Name() string { return "archive" }

func (c ArchiveChecker) Check(ctx context.Context) CheckResult {
	if c.Store == nil {
		return CheckResult{Status: StatusHealthy, Message: "archive disabled"}
	}
	if err := c.Store.Ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}
