package types

import "go.uber.org/zap"

// DefaultVersion is the fallback version when AppContext is nil
const DefaultVersion = "dev"

// AppContext holds application-wide context information passed to commands
type AppContext struct {
	Version string
	Logger  *zap.Logger
}

// Log returns the context logger, or a no-op logger when none is set
func (c *AppContext) Log() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// VersionOrDefault returns the context version, or DefaultVersion when unset
func (c *AppContext) VersionOrDefault() string {
	if c == nil || c.Version == "" {
		return DefaultVersion
	}
	return c.Version
}
