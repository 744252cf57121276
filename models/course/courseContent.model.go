package course

import "gorm.io/gorm"

// Lesson content types
const (
	ContentVideo    = "VIDEO"
	ContentText     = "TEXT"
	ContentDocument = "DOCUMENT"
)

// Lesson is a single piece of course content
type Lesson struct {
	gorm.Model
	CourseID        uint   `json:"course_id" gorm:"index;not null"`
	SectionID       uint   `json:"section_id" gorm:"index;not null"`
	Title           string `json:"title"`
	ContentType     string `json:"content_type" gorm:"type:varchar(20);default:'VIDEO'"`
	VideoURL        string `json:"video_url,omitempty"`
	TextContent     string `json:"text_content,omitempty" gorm:"type:text"`
	DocumentURL     string `json:"document_url,omitempty"`
	DurationSeconds int    `json:"duration_seconds" gorm:"default:0"`
	IsPreview       bool   `json:"is_preview" gorm:"default:false"`
	OrderIndex      int    `json:"order_index" gorm:"default:0"`
	IsDeleted       bool   `json:"-" gorm:"default:false"`
}

// HideContent strips the playable content from a lesson.
func (l *Lesson) HideContent() {
	l.VideoURL = ""
	l.TextContent = ""
	l.DocumentURL = ""
}
