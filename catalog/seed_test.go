package catalog

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedMigrationStocksFallback(t *testing.T) {
	body, err := os.ReadFile("../driver/migrations/0002_seed_products.sql")
	require.NoError(t, err)
	sql := string(body)

	assert.Contains(t, sql, "ON CONFLICT (id) DO NOTHING")

	rows := make(map[string]string)
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "(") {
			continue
		}
		id := strings.TrimPrefix(line[:strings.Index(line, ",")], "(")
		rows[id] = strings.TrimSuffix(line, ",")
	}

	for _, p := range Fallback() {
		row, ok := rows[fmt.Sprint(p.ID)]
		require.True(t, ok, "product %d not seeded", p.ID)
		assert.Contains(t, row, "'"+p.Name+"'")
		assert.Contains(t, row, ", "+p.Price.StringFixed(2)+", ")
		assert.Contains(t, row, "'"+p.Image+"'")
		assert.True(t, strings.HasSuffix(row, fmt.Sprintf(", %d)", p.Stock)), "stock of product %d: %s", p.ID, row)
	}
	assert.Len(t, rows, len(Fallback()))
}
