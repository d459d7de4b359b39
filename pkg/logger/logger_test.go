package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerLevel(t *testing.T) {
	defer std.SetLevel(logrus.InfoLevel)

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, InitLogger("warn", ""))

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
}

func TestInitLoggerBadLevel(t *testing.T) {
	assert.Error(t, InitLogger("loud", ""))
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(logrus.Fields{"stage": "insert", "batch": 3}).Error("boom")

	out := buf.String()
	assert.Contains(t, out, "stage=insert")
	assert.Contains(t, out, "batch=3")
	assert.Contains(t, out, "level=error")
}
