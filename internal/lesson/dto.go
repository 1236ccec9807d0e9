// AngelaMos | 2026
// dto.go

package lesson

import (
	"time"
)

type CreateLessonRequest struct {
	Title           string  `json:"title"            validate:"required,notblank,max=200"`
	Description     *string `json:"description"      validate:"omitempty,max=5000"`
	LessonType      string  `json:"lesson_type"      validate:"required,oneof=video text quiz assignment"`
	Content         *string `json:"content"`
	VideoURL        *string `json:"video_url"        validate:"omitempty,url,max=500"`
	FileURL         *string `json:"file_url"         validate:"omitempty,url,max=500"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0"`
	OrderIndex      int     `json:"order_index"      validate:"gte=0"`
	IsPreview       bool    `json:"is_preview"`
}

type UpdateLessonRequest struct {
	Title           *string `json:"title"            validate:"omitempty,notblank,max=200"`
	Description     *string `json:"description"      validate:"omitempty,max=5000"`
	LessonType      *string `json:"lesson_type"      validate:"omitempty,oneof=video text quiz assignment"`
	Content         *string `json:"content"`
	VideoURL        *string `json:"video_url"        validate:"omitempty,url,max=500"`
	FileURL         *string `json:"file_url"         validate:"omitempty,url,max=500"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0"`
	OrderIndex      *int    `json:"order_index"      validate:"omitempty,gte=0"`
}

type PreviewRequest struct {
	IsPreview *bool `json:"is_preview" validate:"required"`
}

type LessonResponse struct {
	ID              int64     `json:"id"`
	SectionID       int64     `json:"section_id"`
	CourseID        int64     `json:"course_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	LessonType      string    `json:"lesson_type"`
	Content         *string   `json:"content"`
	VideoURL        *string   `json:"video_url"`
	FileURL         *string   `json:"file_url"`
	DurationMinutes int       `json:"duration_minutes"`
	OrderIndex      int       `json:"order_index"`
	IsPublished     bool      `json:"is_published"`
	IsPreview       bool      `json:"is_preview"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToLessonResponse(l *Lesson) LessonResponse {
	return LessonResponse{
		ID:              l.ID,
		SectionID:       l.SectionID,
		CourseID:        l.CourseID,
		Title:           l.Title,
		Description:     l.Description,
		LessonType:      l.LessonType,
		Content:         l.Content,
		VideoURL:        l.VideoURL,
		FileURL:         l.FileURL,
		DurationMinutes: l.DurationMinutes,
		OrderIndex:      l.OrderIndex,
		IsPublished:     l.IsPublished,
		IsPreview:       l.IsPreview,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// ToLessonResponseList always omits content; clients fetch it per lesson
// through the access check. Media URLs are kept only for previews unless
// unlocked is set.
func ToLessonResponseList(lessons []Lesson, unlocked bool) []LessonResponse {
	out := make([]LessonResponse, 0, len(lessons))
	for i := range lessons {
		resp := ToLessonResponse(&lessons[i])
		resp.Content = nil
		if !lessons[i].Unlocks(unlocked) {
			resp.VideoURL = nil
			resp.FileURL = nil
		}
		out = append(out, resp)
	}
	return out
}
