package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestlings/planner/internal/platform/auth"
)

// setupEnv points the configuration at a private in-memory database
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NESTLINGS_AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("NESTLINGS_DATABASE_DRIVER", "sqlite")
	t.Setenv("NESTLINGS_DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	t.Setenv("NESTLINGS_DATABASE_LOG_LEVEL", "silent")
	t.Setenv("NESTLINGS_LLM_API_KEY", "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-mode", "test"))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"ingest", "migrate", "seed", "token"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.NotNil(t, cmd.RunE, name)
	}
}

func TestArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"ingest needs a url", []string{"ingest"}},
		{"token needs a caller", []string{"token"}},
		{"token takes one caller", []string{"token", "a", "b"}},
		{"seed takes no args", []string{"seed", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestTokenCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "token", "user-9", "--ttl", "2h")
	require.NoError(t, err)

	manager, err := auth.NewTokenManager("cli-secret", "nestlings")
	require.NoError(t, err)

	subject, err := manager.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-9", subject)
	assert.Equal(t, 2*time.Hour, tokenTTL)
}

func TestSeedCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seed complete")
}

func TestIngestCommand_NoLLM(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "ingest", "https://shop.example.com/p/1")
	assert.ErrorContains(t, err, "LLM")
}
