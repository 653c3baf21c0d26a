package debuglog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskFiltersLowerSeverity(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("test", DEBUG, BackendFile, &buf)
	require.NoError(t, err)

	l.Log(VDEBUG, "should not appear")
	l.Log(INFO, "should appear %d", 42)

	out := buf.String()
	require.NotContains(t, out, "should not appear")
	require.True(t, strings.Contains(out, "should appear 42"))
}

func TestFuncBindsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("test", VVDEBUG, BackendFile, &buf)
	require.NoError(t, err)

	info := l.Func(INFO)
	info("hello %s", "world")
	require.Contains(t, buf.String(), "hello world")
}
