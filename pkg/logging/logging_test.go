package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"DEBUG":   logrus.DebugLevel,
		" warn ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"err":     logrus.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	lg, err := Configure(Options{Level: "debug", JSON: true, Writer: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Configure(Options{}) })

	lg.WithField("user_id", 4).Debug("hello")
	assert.Contains(t, buf.String(), `"user_id":4`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
