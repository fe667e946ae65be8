package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGetFullVersion_IncludesBuildTime 注入构建时间后输出格式化时间
func TestGetFullVersion_IncludesBuildTime(t *testing.T) {
	// Arrange
	prev := BuildTime
	BuildTime = "2026-01-02T03:04:05Z"
	t.Cleanup(func() { BuildTime = prev })

	// Act
	out := GetFullVersion()

	// Assert
	assert.Contains(t, out, "pmengine "+Version)
	assert.Contains(t, out, "2026-01-02 03:04:05 UTC")
}
