package common

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	defer log.SetLevel(log.GetLevel())

	levels := map[string]log.Level{
		"debug":  log.DebugLevel,
		"WARN":   log.WarnLevel,
		"error":  log.ErrorLevel,
		"info":   log.InfoLevel,
		"chatty": log.InfoLevel,
	}
	for name, want := range levels {
		SetLogLevel(name)
		assert.Equal(t, want, log.GetLevel(), name)
	}
}
