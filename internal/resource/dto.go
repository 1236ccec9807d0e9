// AngelaMos | 2026
// dto.go

package resource

import (
	"time"
)

type CreateResourceRequest struct {
	FileName string  `json:"file_name" validate:"required,notblank,max=255"`
	FileURL  string  `json:"file_url"  validate:"required,url,max=500"`
	FileType *string `json:"file_type" validate:"omitempty,max=50"`
	FileSize int64   `json:"file_size" validate:"gte=0"`
}

type ResourceResponse struct {
	ID            int64     `json:"id"`
	LessonID      int64     `json:"lesson_id"`
	FileName      string    `json:"file_name"`
	FileURL       string    `json:"file_url"`
	FileType      *string   `json:"file_type"`
	FileSize      int64     `json:"file_size"`
	DownloadCount int       `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToResourceResponse(r *Resource) ResourceResponse {
	return ResourceResponse{
		ID:            r.ID,
		LessonID:      r.LessonID,
		FileName:      r.FileName,
		FileURL:       r.FileURL,
		FileType:      r.FileType,
		FileSize:      r.FileSize,
		DownloadCount: r.DownloadCount,
		CreatedAt:     r.CreatedAt,
	}
}

func ToResourceResponseList(resources []Resource) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(resources))
	for i := range resources {
		out = append(out, ToResourceResponse(&resources[i]))
	}
	return out
}
