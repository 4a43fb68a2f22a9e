package versions

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	noBuildInfo := func() (*debug.BuildInfo, bool) { return nil, false }
	withVCS := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2024-01-02T03:04:05Z"},
		}}, true
	}

	t.Run("release build keeps ldflags values", func(t *testing.T) {
		t.Parallel()

		info := versionInfo("v1.2.3", "abc", "2024-01-01", withVCS)
		assert.Equal(t, "v1.2.3", info.Version)
		assert.Equal(t, "abc", info.Commit)
		assert.Equal(t, "2024-01-01", info.BuildDate)
		assert.NotEmpty(t, info.GoVersion)
		assert.Contains(t, info.Platform, "/")
	})

	t.Run("dev build reads vcs stamps", func(t *testing.T) {
		t.Parallel()

		info := versionInfo("dev", unknownStr, unknownStr, withVCS)
		assert.Equal(t, "dev-01234567", info.Version)
		assert.Equal(t, "0123456789abcdef", info.Commit)
		assert.Equal(t, "2024-01-02T03:04:05Z", info.BuildDate)
	})

	t.Run("dev build without build info", func(t *testing.T) {
		t.Parallel()

		info := versionInfo("dev", unknownStr, unknownStr, noBuildInfo)
		assert.Equal(t, "dev-unknown", info.Version)
	})
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(UserAgent(), "gluon-census/"))
}
