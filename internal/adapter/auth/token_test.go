package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmorris/prwatch/internal/adapter/auth"
	"github.com/gmorris/prwatch/internal/config"
)

func TestResolveToken_EnvironmentWins(t *testing.T) {
	token, err := auth.ResolveToken(context.Background(), auth.Options{
		ConfigToken: "from-config",
		Lookup: func(key string) string {
			if key == "GITHUB_TOKEN" {
				return "from-env"
			}
			return ""
		},
		Run: func(ctx context.Context, name string, args ...string) (string, error) {
			t.Fatal("gh must not run when the env var is set")
			return "", nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "from-env", token)
}

func TestResolveToken_ConfigBeforeGH(t *testing.T) {
	token, err := auth.ResolveToken(context.Background(), auth.Options{
		ConfigToken: "from-config",
		Lookup:      func(string) string { return "" },
		Run: func(ctx context.Context, name string, args ...string) (string, error) {
			t.Fatal("gh must not run when the config token is set")
			return "", nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "from-config", token)
}

func TestResolveToken_GHFallback(t *testing.T) {
	var gotName string
	var gotArgs []string
	token, err := auth.ResolveToken(context.Background(), auth.Options{
		Lookup: func(string) string { return "" },
		Run: func(ctx context.Context, name string, args ...string) (string, error) {
			gotName = name
			gotArgs = args
			return "gho_fromcli\n", nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "gho_fromcli", token)
	assert.Equal(t, "gh", gotName)
	assert.Equal(t, []string{"auth", "token"}, gotArgs)
}

func TestResolveToken_AllSourcesExhausted(t *testing.T) {
	_, err := auth.ResolveToken(context.Background(), auth.Options{
		Lookup: func(string) string { return "" },
		Run: func(ctx context.Context, name string, args ...string) (string, error) {
			return "", errors.New("gh: not logged in")
		},
	})

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GitHub token", cfgErr.Missing)
}

func TestResolveToken_WhitespaceOnlyValuesSkipped(t *testing.T) {
	token, err := auth.ResolveToken(context.Background(), auth.Options{
		ConfigToken: "   ",
		Lookup: func(key string) string {
			return " \n"
		},
		Run: func(ctx context.Context, name string, args ...string) (string, error) {
			return "real-token", nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "real-token", token)
}
