package admin_test

import (
	"go/format"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositorySourcesFormatted(t *testing.T) {
	t.Run("Should keep the dialect bindings gofmt clean", func(t *testing.T) {
		files, err := filepath.Glob(filepath.Join("repository", "*", "*.go"))
		require.NoError(t, err)
		require.NotEmpty(t, files)
		for _, file := range files {
			src, err := os.ReadFile(file)
			require.NoError(t, err)
			formatted, err := format.Source(src)
			require.NoError(t, err, file)
			assert.Equal(t, string(formatted), string(src), file)
		}
	})
}
