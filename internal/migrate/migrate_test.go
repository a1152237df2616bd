package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrdersByVersion(t *testing.T) {
	ms, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, ms)

	for i, m := range ms {
		assert.Equal(t, i+1, m.Version, "versions must be contiguous from 1")
		assert.NotEmpty(t, strings.TrimSpace(m.SQL), m.Name)
	}
}

func TestAppointmentsSchemaConstrainsStatus(t *testing.T) {
	ms, err := Load()
	require.NoError(t, err)

	var schema string
	for _, m := range ms {
		if strings.Contains(m.Name, "appointments") {
			schema = m.SQL
		}
	}
	require.NotEmpty(t, schema)
	for _, s := range []string{"pending", "accepted", "rejected", "in_consultation", "completed", "cancelled"} {
		assert.Contains(t, schema, "'"+s+"'")
	}
}
