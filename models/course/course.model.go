package course

import (
	"time"

	"edumarket/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course statuses
const (
	StatusDraft         = "DRAFT"
	StatusPendingReview = "PENDING_REVIEW"
	StatusPublished     = "PUBLISHED"
	StatusRejected      = "REJECTED"
	StatusHidden        = "HIDDEN"
)

// Course levels
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
	LevelAll          = "ALL"
)

// Category groups courses in the catalog
type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:191;uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"size:191;uniqueIndex;not null"`
	Description string `json:"description"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// Course represents a course sold in the marketplace
type Course struct {
	gorm.Model
	InstructorID     uint             `json:"instructor_id" gorm:"index;not null"`
	CategoryID       *uint            `json:"category_id" gorm:"index"`
	Title            string           `json:"title" gorm:"not null"`
	Slug             string           `json:"slug" gorm:"size:191;uniqueIndex"`
	ShortDescription string           `json:"short_description"`
	Description      string           `json:"description" gorm:"type:text"`
	Price            decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	SalePrice        *decimal.Decimal `json:"sale_price" gorm:"type:decimal(12,2)"`
	Level            string           `json:"level" gorm:"type:varchar(20);default:'ALL'"`
	Language         string           `json:"language" gorm:"type:varchar(20);default:'vi'"`
	ThumbnailURL     string           `json:"thumbnail_url"`
	AccessDays       int              `json:"access_days" gorm:"default:0"` // 0 = lifetime access
	Status           string           `json:"status" gorm:"type:varchar(20);default:'DRAFT';index"`
	RatingAvg        decimal.Decimal  `json:"rating_avg" gorm:"type:decimal(3,2);not null;default:0"`
	RatingCount      int              `json:"rating_count" gorm:"default:0"`
	StudentCount     int              `json:"student_count" gorm:"default:0"`
	PublishedAt      *time.Time       `json:"published_at"`
	IsDeleted        bool             `json:"-" gorm:"default:false"`

	Instructor models.User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Sections   []Section   `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
}

// EffectivePrice is the price a buyer pays before vouchers.
func (c *Course) EffectivePrice() decimal.Decimal {
	if c.SalePrice != nil && c.SalePrice.GreaterThanOrEqual(decimal.Zero) && c.SalePrice.LessThan(c.Price) {
		return *c.SalePrice
	}
	return c.Price
}

// IsPurchasable reports whether the course can be added to a cart.
func (c *Course) IsPurchasable() bool {
	return c.Status == StatusPublished && !c.IsDeleted
}

// AccessExpiry returns the access expiry for access starting at from, nil for lifetime.
func (c *Course) AccessExpiry(from time.Time) *time.Time {
	if c.AccessDays <= 0 {
		return nil
	}
	t := from.AddDate(0, 0, c.AccessDays)
	return &t
}
