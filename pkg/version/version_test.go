package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.NotEmpty(t, info.Commit)
}

func TestString(t *testing.T) {
	s := String()

	assert.True(t, strings.HasPrefix(s, "txtseek "+Version))
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Equal(t, Version, Short())
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "0123456789ab", shorten("0123456789abcdef"))
	assert.Equal(t, "abc", shorten("abc"))
}
