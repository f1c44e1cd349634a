package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustPath(t *testing.T, s string) Path {
	t.Helper()
	path, err := ParsePath(s)
	require.NoError(t, err)
	return path
}
