package migrations

import (
	"github.com/go-pg/migrations/v8"
	"github.com/go-pg/pg/v10"
	log "github.com/sirupsen/logrus"
	"github.com/videoteca/cloud-import/services/youtube"
)

type videoRow struct {
	ID  string `pg:"id"`
	URL string `pg:"video_url"`
}

var youtubeTables = []struct {
	table string
	pk    string
}{
	{table: "videos", pk: "video_id"},
	{table: "analisis", pk: "analisis_id"},
	{table: "analisis_jugador", pk: "analisis_jugador_id"},
}

// BackfillYoutubeVideoID fills youtube_video_id of rows saved before the id
// was stored, so duplicate checks can match them by id.
func BackfillYoutubeVideoID(col *migrations.Collection) {
	col.MustRegisterTx(func(db migrations.DB) error {
		for _, t := range youtubeTables {
			var rows []videoRow
			_, err := db.Query(&rows, `SELECT ?0::text AS id, video_url FROM ?1 WHERE es_youtube AND youtube_video_id IS NULL`,
				pg.Ident(t.pk), pg.Ident(t.table))
			if err != nil {
				return err
			}
			n := 0
			for _, r := range rows {
				id := youtube.VideoIDFromURL(r.URL)
				if id == "" {
					continue
				}
				_, err = db.Exec(`UPDATE ?0 SET youtube_video_id = ?1 WHERE ?2 = ?3::uuid`,
					pg.Ident(t.table), id, pg.Ident(t.pk), r.ID)
				if err != nil {
					return err
				}
				n++
			}
			log.WithField("table", t.table).
				WithField("rows", n).
				Info("youtube video ids backfilled")
		}
		return nil
	}, func(db migrations.DB) error {
		return nil
	})
}
