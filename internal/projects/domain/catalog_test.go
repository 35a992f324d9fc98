package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	t.Run("has the five roles", func(t *testing.T) {
		ids := make([]string, 0, len(c.Roles))
		for _, r := range c.Roles {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"developer", "writer", "student", "entrepreneur", "creative"}, ids)
	})

	t.Run("default type is the first type of the role", func(t *testing.T) {
		assert.Equal(t, "Blog Post", c.DefaultType("writer"))
		assert.Equal(t, "Web App", c.DefaultType("Developer"))
		assert.Equal(t, "", c.DefaultType("astronaut"))
	})

	t.Run("templates are found case-insensitively", func(t *testing.T) {
		tpl, ok := c.Template("creative", "30-day art challenge")
		require.True(t, ok)
		assert.Equal(t, "Art Project", tpl.Type)

		_, ok = c.Template("creative", "missing")
		assert.False(t, ok)
	})
}

func TestLoadCatalog_RejectsRoleWithoutTypes(t *testing.T) {
	_, err := LoadCatalog([]byte("roles:\n  - id: empty\n"))
	assert.Error(t, err)
}
