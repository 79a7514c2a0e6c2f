package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWarnIfUnauthenticated(t *testing.T) {
	tests := []struct {
		name string
		env  string
		keys []string
		want bool
	}{
		{"prod without keys", "prod", nil, true},
		{"prod with keys", "prod", []string{"k"}, false},
		{"local without keys", "local", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)

			got := warnIfUnauthenticated(zap.New(core), tc.env, tc.keys)

			assert.Equal(t, tc.want, got)
			if tc.want {
				assert.Equal(t, 1, logs.Len())
			} else {
				assert.Zero(t, logs.Len())
			}
		})
	}
}
