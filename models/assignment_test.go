package models

import (
	"strings"
	"testing"

	"github.com/go-pg/pg/v10/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// whereSQL formats q and returns its table and WHERE clause.
func whereSQL(t *testing.T, q *orm.Query) (string, string) {
	t.Helper()
	sel := orm.NewSelectQuery(q)
	b, err := sel.AppendQuery(orm.NewFormatter().WithModel(sel), nil)
	require.NoError(t, err)
	sql := string(b)
	i := strings.Index(sql, " WHERE ")
	require.True(t, i > 0, sql)
	return sql[:i], sql[i:]
}

func TestExistsQueries(t *testing.T) {
	t.Run("footage is unique per category and type", func(t *testing.T) {
		from, sql := whereSQL(t, videoExistsQuery(orm.NewQuery(nil, (*Video)(nil)),
			"team-1", "cat-1", ContentMatch, "https://www.youtube.com/watch?v=a", "a"))
		assert.Contains(t, from, `FROM "videos"`)
		assert.Contains(t, sql, "equipo_id = 'team-1'")
		assert.Contains(t, sql, "categoria_id = 'cat-1'")
		assert.Contains(t, sql, "tipo = 'partido'")
		assert.Contains(t, sql, "video_url = 'https://www.youtube.com/watch?v=a'")
		assert.Contains(t, sql, "youtube_video_id = 'a'")
		assert.Contains(t, sql, " OR ")
	})

	t.Run("analysis is unique per category", func(t *testing.T) {
		from, sql := whereSQL(t, analysisExistsQuery(orm.NewQuery(nil, (*Analysis)(nil)),
			"team-1", "cat-1", "https://www.youtube.com/watch?v=a", "a"))
		assert.Contains(t, from, `FROM "analisis"`)
		assert.Contains(t, sql, "categoria_id = 'cat-1'")
		assert.NotContains(t, sql, "tipo")
		assert.NotContains(t, sql, "jugador_id")
	})

	t.Run("player analysis is unique per player", func(t *testing.T) {
		from, sql := whereSQL(t, playerAnalysisExistsQuery(orm.NewQuery(nil, (*PlayerAnalysis)(nil)),
			"team-1", "player-9", "https://www.youtube.com/watch?v=a", ""))
		assert.Contains(t, from, `FROM "analisis_jugador"`)
		assert.Contains(t, sql, "jugador_id = 'player-9'")
		assert.NotContains(t, sql, "categoria_id")
		assert.NotContains(t, sql, "youtube_video_id", "url only match without a youtube id")
	})
}
