// AngelaMos | 2026
// entity.go

package resource

import (
	"time"
)

type Resource struct {
	ID            int64     `db:"id"`
	LessonID      int64     `db:"lesson_id"`
	FileName      string    `db:"file_name"`
	FileURL       string    `db:"file_url"`
	FileType      *string   `db:"file_type"`
	FileSize      int64     `db:"file_size"`
	DownloadCount int       `db:"download_count"`
	CreatedAt     time.Time `db:"created_at"`
}
