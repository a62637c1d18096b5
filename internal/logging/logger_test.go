package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
		"info":    logrus.InfoLevel,
		"":        logrus.InfoLevel,
		"chatty":  logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, GetLevel(in), in)
	}
}

func TestSetupWritesToFile(t *testing.T) {
	prev := logrus.StandardLogger().Out
	defer logrus.SetOutput(prev)

	name := t.TempDir() + "/repflow"
	Setup(SetupParams{Level: "debug", JSON: true, FileName: name})

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.FileExists(t, name+".log")
}
