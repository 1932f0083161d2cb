package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/cuke/internal/config"
)

func runList(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunList(&buf, config.Default(), args))
	return buf.String()
}

func TestList_ScenariosFromOneFile(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))

	out := runList(t)

	assert.Equal(t, "features/login.feature:2  Scenario: User logs in\n"+
		"features/login.feature:7  Scenario: Wrong password\n", out)
}

func TestList_SortedByFilePath(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.MkdirAll("features/shop", 0o755))
	require.NoError(t, os.WriteFile("features/shop/checkout.feature", []byte(`Feature: Checkout
  Scenario Outline: Pay with <card>
    Given a cart

    Examples:
      | card |
      | visa |
`), 0o644))
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))

	lines := strings.Split(strings.TrimSpace(runList(t)), "\n")

	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "features/login.feature:2 "), lines[0])
	assert.Equal(t, "features/shop/checkout.feature:2  Scenario Outline: Pay with <card>", lines[2])
}

func TestList_LineFilter(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))

	out := runList(t, "features/login.feature:9")

	assert.Equal(t, "features/login.feature:7  Scenario: Wrong password\n", out)
}

func TestList_NoFeatures(t *testing.T) {
	inTempDir(t)
	runInit(t)

	assert.Empty(t, runList(t))
}
