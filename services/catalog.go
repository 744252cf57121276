package services

import (
	"strconv"
	"strings"
	"time"

	"edumarket/models"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// effective price in SQL, mirrors course.Course.EffectivePrice
const effectivePriceSQL = "(CASE WHEN sale_price IS NOT NULL AND sale_price >= 0 AND sale_price < price THEN sale_price ELSE price END)"

// Catalog sort keys
const (
	SortNewest    = "newest"
	SortPopular   = "popular"
	SortRating    = "rating"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// CourseFilter narrows the public catalog.
type CourseFilter struct {
	Keyword    string
	CategoryID uint
	Level      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

// CourseInput carries editable course fields. Nil fields are left unchanged on update.
type CourseInput struct {
	Title            *string
	ShortDescription *string
	Description      *string
	CategoryID       *uint
	Price            *decimal.Decimal
	SalePrice        *decimal.Decimal
	ClearSalePrice   bool
	Level            *string
	Language         *string
	AccessDays       *int
}

// SectionInput carries editable section fields.
type SectionInput struct {
	Title       string
	Description string
	OrderIndex  int
}

// LessonInput carries editable lesson fields.
type LessonInput struct {
	SectionID       uint
	Title           string
	ContentType     string
	VideoURL        string
	TextContent     string
	DocumentURL     string
	DurationSeconds int
	IsPreview       bool
	OrderIndex      int
}

// InstructorCourse is a course of an instructor with its sales figures.
type InstructorCourse struct {
	course.Course
	Earnings decimal.Decimal `json:"earnings"`
	Sales    int64           `json:"sales"`
}

func publicUserFields(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "avatar_url", "bio")
}

// ListPublishedCourses returns one page of the public catalog.
func ListPublishedCourses(db *gorm.DB, f CourseFilter, p utils.Pagination) ([]course.Course, int64, error) {
	q := db.Model(&course.Course{}).Where("status = ? AND is_deleted = ?", course.StatusPublished, false)

	if kw := strings.TrimSpace(strings.ToLower(f.Keyword)); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(short_description) LIKE ?", like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Level != "" {
		q = q.Where("level = ?", strings.ToUpper(f.Level))
	}
	// bound as floats, a CASE expression has no column affinity on sqlite
	if f.MinPrice != nil {
		q = q.Where(effectivePriceSQL+" >= ?", f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		q = q.Where(effectivePriceSQL+" <= ?", f.MaxPrice.InexactFloat64())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count courses")
	}

	switch f.Sort {
	case SortPopular:
		q = q.Order("student_count DESC").Order("id DESC")
	case SortRating:
		q = q.Order("rating_avg DESC").Order("rating_count DESC").Order("id DESC")
	case SortPriceAsc:
		q = q.Order(effectivePriceSQL + " ASC").Order("id DESC")
	case SortPriceDesc:
		q = q.Order(effectivePriceSQL + " DESC").Order("id DESC")
	default:
		q = q.Order("published_at DESC").Order("id DESC")
	}

	var courses []course.Course
	if err := q.Preload("Instructor", publicUserFields).Preload("Category").
		Offset(p.Offset).Limit(p.Limit).Find(&courses).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list courses")
	}
	return courses, total, nil
}

// FindCourse loads a course by numeric id or slug.
func FindCourse(db *gorm.DB, idOrSlug string) (*course.Course, error) {
	var c course.Course
	q := db.Where("is_deleted = ?", false)
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", idOrSlug)
	}
	if err := q.Preload("Instructor", publicUserFields).Preload("Category").First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Course not found!")
		}
		return nil, errors.Wrap(err, "load course")
	}
	return &c, nil
}

// LoadCurriculum attaches ordered sections and lessons to c. Lesson content is
// stripped from non-preview lessons unless fullAccess is set.
func LoadCurriculum(db *gorm.DB, c *course.Course, fullAccess bool) error {
	var sections []course.Section
	if err := db.Where("course_id = ? AND is_deleted = ?", c.ID, false).
		Order("order_index ASC").Order("id ASC").
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("is_deleted = ?", false).Order("order_index ASC").Order("id ASC")
		}).
		Find(&sections).Error; err != nil {
		return errors.Wrap(err, "load curriculum")
	}
	if !fullAccess {
		for i := range sections {
			for j := range sections[i].Lessons {
				if !sections[i].Lessons[j].IsPreview {
					sections[i].Lessons[j].HideContent()
				}
			}
		}
	}
	c.Sections = sections
	return nil
}

// UniqueSlug derives a slug from title that no other course uses.
func UniqueSlug(db *gorm.DB, title string, excludeID uint) (string, error) {
	base := utils.Slugify(title)
	slug := base
	for i := 2; ; i++ {
		var n int64
		if err := db.Unscoped().Model(&course.Course{}).Where("slug = ? AND id <> ?", slug, excludeID).Count(&n).Error; err != nil {
			return "", errors.Wrap(err, "check slug")
		}
		if n == 0 {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

func applyCourseInput(c *course.Course, in CourseInput) error {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.ShortDescription != nil {
		c.ShortDescription = *in.ShortDescription
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			c.CategoryID = nil
		} else {
			id := *in.CategoryID
			c.CategoryID = &id
		}
	}
	if in.Price != nil {
		c.Price = in.Price.Round(2)
	}
	if in.ClearSalePrice {
		c.SalePrice = nil
	} else if in.SalePrice != nil {
		sp := in.SalePrice.Round(2)
		c.SalePrice = &sp
	}
	if in.Level != nil {
		c.Level = strings.ToUpper(*in.Level)
	}
	if in.Language != nil {
		c.Language = *in.Language
	}
	if in.AccessDays != nil {
		c.AccessDays = *in.AccessDays
	}

	if c.Title == "" {
		return invalidInput("Title is required!")
	}
	if c.Price.IsNegative() {
		return invalidInput("Price must not be negative!")
	}
	if c.SalePrice != nil && (c.SalePrice.IsNegative() || c.SalePrice.GreaterThan(c.Price)) {
		return invalidInput("Sale price must be between 0 and the price!")
	}
	if c.AccessDays < 0 {
		return invalidInput("Access days must not be negative!")
	}
	return nil
}

func checkCategory(db *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := db.Model(&course.Category{}).Where("id = ? AND is_deleted = ?", *id, false).Count(&n).Error; err != nil {
		return errors.Wrap(err, "check category")
	}
	if n == 0 {
		return notFound("Category not found!")
	}
	return nil
}

// CreateCourse stores a new DRAFT course for instructorID.
func CreateCourse(db *gorm.DB, instructorID uint, in CourseInput) (*course.Course, error) {
	c := course.Course{
		InstructorID: instructorID,
		Status:       course.StatusDraft,
		Level:        course.LevelAll,
		Language:     "vi",
		Price:        decimal.Zero,
		RatingAvg:    decimal.Zero,
	}
	if err := applyCourseInput(&c, in); err != nil {
		return nil, err
	}
	if err := checkCategory(db, c.CategoryID); err != nil {
		return nil, err
	}

	slug, err := UniqueSlug(db, c.Title, 0)
	if err != nil {
		return nil, err
	}
	c.Slug = slug
	if err := db.Create(&c).Error; err != nil {
		return nil, errors.Wrap(err, "create course")
	}
	return &c, nil
}

// OwnedCourse loads a course that instructorID owns.
func OwnedCourse(db *gorm.DB, instructorID, courseID uint) (*course.Course, error) {
	var c course.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Course not found!")
		}
		return nil, errors.Wrap(err, "load course")
	}
	if c.InstructorID != instructorID {
		return nil, forbidden("You can only manage your own courses!")
	}
	return &c, nil
}

func editable(c *course.Course) error {
	switch c.Status {
	case course.StatusDraft, course.StatusRejected, course.StatusPublished:
		return nil
	case course.StatusPendingReview:
		return invalidState("Course is under review and cannot be edited!")
	default:
		return invalidState("Course cannot be edited in status " + c.Status + "!")
	}
}

// UpdateCourse edits a course owned by instructorID. Published courses stay published.
func UpdateCourse(db *gorm.DB, instructorID, courseID uint, in CourseInput) (*course.Course, error) {
	c, err := OwnedCourse(db, instructorID, courseID)
	if err != nil {
		return nil, err
	}
	if err := editable(c); err != nil {
		return nil, err
	}

	oldTitle := c.Title
	if err := applyCourseInput(c, in); err != nil {
		return nil, err
	}
	if err := checkCategory(db, c.CategoryID); err != nil {
		return nil, err
	}
	if c.Title != oldTitle && c.Status != course.StatusPublished {
		if c.Slug, err = UniqueSlug(db, c.Title, c.ID); err != nil {
			return nil, err
		}
	}

	if err := db.Model(c).Select(
		"title", "slug", "short_description", "description", "category_id", "price",
		"sale_price", "level", "language", "access_days",
	).Updates(c).Error; err != nil {
		return nil, errors.Wrap(err, "update course")
	}
	return c, nil
}

// SetCourseThumbnail stores the public URL of an uploaded thumbnail.
func SetCourseThumbnail(db *gorm.DB, instructorID, courseID uint, url string) (*course.Course, error) {
	c, err := OwnedCourse(db, instructorID, courseID)
	if err != nil {
		return nil, err
	}
	c.ThumbnailURL = url
	if err := db.Model(c).Update("thumbnail_url", url).Error; err != nil {
		return nil, errors.Wrap(err, "update thumbnail")
	}
	return c, nil
}

// DeleteCourse soft deletes a course that nobody ever enrolled in.
func DeleteCourse(db *gorm.DB, instructorID, courseID uint) error {
	c, err := OwnedCourse(db, instructorID, courseID)
	if err != nil {
		return err
	}
	var enrolled int64
	if err := db.Model(&course.Enrollment{}).Where("course_id = ?", c.ID).Count(&enrolled).Error; err != nil {
		return errors.Wrap(err, "count enrollments")
	}
	if enrolled > 0 {
		return conflict("Course has enrollments and cannot be deleted, hide it instead!")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(c).Updates(map[string]interface{}{"is_deleted": true, "status": course.StatusHidden}).Error; err != nil {
			return errors.Wrap(err, "delete course")
		}
		return errors.Wrap(removeCourseFromCarts(tx, c.ID), "remove course from carts")
	})
}

// ListInstructorCourses returns every course of instructorID with its sales figures.
func ListInstructorCourses(db *gorm.DB, instructorID uint, status string) ([]InstructorCourse, error) {
	q := db.Where("instructor_id = ? AND is_deleted = ?", instructorID, false)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var courses []course.Course
	if err := q.Preload("Category").Order("id DESC").Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "list instructor courses")
	}

	var rows []struct {
		CourseID uint
		Earnings decimal.Decimal
		Sales    int64
	}
	if err := db.Table("revenue_shares").
		Select("course_id, COALESCE(SUM(instructor_amount), 0) AS earnings, COUNT(*) AS sales").
		Where("instructor_id = ? AND is_reversed = ? AND deleted_at IS NULL", instructorID, false).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "aggregate course earnings")
	}
	stats := make(map[uint]int, len(rows))
	for i, r := range rows {
		stats[r.CourseID] = i
	}

	out := make([]InstructorCourse, 0, len(courses))
	for _, c := range courses {
		ic := InstructorCourse{Course: c, Earnings: decimal.Zero}
		if i, ok := stats[c.ID]; ok {
			ic.Earnings = rows[i].Earnings
			ic.Sales = rows[i].Sales
		}
		out = append(out, ic)
	}
	return out, nil
}

// ListCourseEnrollments returns the learners of a course owned by instructorID.
func ListCourseEnrollments(db *gorm.DB, instructorID, courseID uint, p utils.Pagination) ([]course.Enrollment, int64, error) {
	if _, err := OwnedCourse(db, instructorID, courseID); err != nil {
		return nil, 0, err
	}
	q := db.Model(&course.Enrollment{}).Where("course_id = ?", courseID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count enrollments")
	}
	var enrollments []course.Enrollment
	if err := q.Order("enrolled_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&enrollments).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list enrollments")
	}
	return enrollments, total, nil
}

// Sections and lessons

func editableCourse(db *gorm.DB, instructorID, courseID uint) (*course.Course, error) {
	c, err := OwnedCourse(db, instructorID, courseID)
	if err != nil {
		return nil, err
	}
	return c, editable(c)
}

// AddSection appends a section to a course owned by instructorID.
func AddSection(db *gorm.DB, instructorID, courseID uint, in SectionInput) (*course.Section, error) {
	if _, err := editableCourse(db, instructorID, courseID); err != nil {
		return nil, err
	}
	s := course.Section{CourseID: courseID, Title: in.Title, Description: in.Description, OrderIndex: in.OrderIndex}
	if err := db.Create(&s).Error; err != nil {
		return nil, errors.Wrap(err, "create section")
	}
	return &s, nil
}

func ownedSection(db *gorm.DB, instructorID, courseID, sectionID uint) (*course.Section, error) {
	if _, err := editableCourse(db, instructorID, courseID); err != nil {
		return nil, err
	}
	var s course.Section
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, courseID, false).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Section not found!")
		}
		return nil, errors.Wrap(err, "load section")
	}
	return &s, nil
}

// UpdateSection edits a section.
func UpdateSection(db *gorm.DB, instructorID, courseID, sectionID uint, in SectionInput) (*course.Section, error) {
	s, err := ownedSection(db, instructorID, courseID, sectionID)
	if err != nil {
		return nil, err
	}
	s.Title, s.Description, s.OrderIndex = in.Title, in.Description, in.OrderIndex
	if err := db.Model(s).Select("title", "description", "order_index").Updates(s).Error; err != nil {
		return nil, errors.Wrap(err, "update section")
	}
	return s, nil
}

// DeleteSection removes a section and its lessons.
func DeleteSection(db *gorm.DB, instructorID, courseID, sectionID uint) error {
	s, err := ownedSection(db, instructorID, courseID, sectionID)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&course.Lesson{}).Where("section_id = ?", s.ID).Update("is_deleted", true).Error; err != nil {
			return errors.Wrap(err, "delete section lessons")
		}
		if err := tx.Model(s).Update("is_deleted", true).Error; err != nil {
			return errors.Wrap(err, "delete section")
		}
		return syncCourseProgress(tx, courseID)
	})
}

func applyLessonInput(l *course.Lesson, in LessonInput) error {
	l.Title = in.Title
	l.ContentType = strings.ToUpper(in.ContentType)
	if l.ContentType == "" {
		l.ContentType = course.ContentVideo
	}
	l.VideoURL, l.TextContent, l.DocumentURL = in.VideoURL, in.TextContent, in.DocumentURL
	l.DurationSeconds, l.IsPreview, l.OrderIndex = in.DurationSeconds, in.IsPreview, in.OrderIndex

	switch l.ContentType {
	case course.ContentVideo:
		if l.VideoURL == "" {
			return invalidInput("Video lessons need a video URL!")
		}
	case course.ContentText:
		if l.TextContent == "" {
			return invalidInput("Text lessons need content!")
		}
	case course.ContentDocument:
		if l.DocumentURL == "" {
			return invalidInput("Document lessons need a document URL!")
		}
	default:
		return invalidInput("Unknown content type!")
	}
	return nil
}

// AddLesson creates a lesson in a section of a course owned by instructorID.
func AddLesson(db *gorm.DB, instructorID, courseID uint, in LessonInput) (*course.Lesson, error) {
	if _, err := ownedSection(db, instructorID, courseID, in.SectionID); err != nil {
		return nil, err
	}
	l := course.Lesson{CourseID: courseID, SectionID: in.SectionID}
	if err := applyLessonInput(&l, in); err != nil {
		return nil, err
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&l).Error; err != nil {
			return errors.Wrap(err, "create lesson")
		}
		return syncCourseProgress(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func ownedLesson(db *gorm.DB, instructorID, courseID, lessonID uint) (*course.Lesson, error) {
	if _, err := editableCourse(db, instructorID, courseID); err != nil {
		return nil, err
	}
	var l course.Lesson
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Lesson not found!")
		}
		return nil, errors.Wrap(err, "load lesson")
	}
	return &l, nil
}

// UpdateLesson edits a lesson. Moving it to another section of the same course is allowed.
func UpdateLesson(db *gorm.DB, instructorID, courseID, lessonID uint, in LessonInput) (*course.Lesson, error) {
	l, err := ownedLesson(db, instructorID, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if in.SectionID == 0 {
		in.SectionID = l.SectionID
	}
	if in.SectionID != l.SectionID {
		if _, err := ownedSection(db, instructorID, courseID, in.SectionID); err != nil {
			return nil, err
		}
	}
	l.SectionID = in.SectionID
	if err := applyLessonInput(l, in); err != nil {
		return nil, err
	}
	if err := db.Model(l).Select(
		"section_id", "title", "content_type", "video_url", "text_content", "document_url",
		"duration_seconds", "is_preview", "order_index",
	).Updates(l).Error; err != nil {
		return nil, errors.Wrap(err, "update lesson")
	}
	return l, nil
}

// DeleteLesson removes a lesson.
func DeleteLesson(db *gorm.DB, instructorID, courseID, lessonID uint) error {
	l, err := ownedLesson(db, instructorID, courseID, lessonID)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(l).Update("is_deleted", true).Error; err != nil {
			return errors.Wrap(err, "delete lesson")
		}
		return syncCourseProgress(tx, courseID)
	})
}

// Categories

// ListCategories returns every active category.
func ListCategories(db *gorm.DB) ([]course.Category, error) {
	var categories []course.Category
	err := db.Where("is_deleted = ?", false).Order("name ASC").Find(&categories).Error
	return categories, errors.Wrap(err, "list categories")
}

// SaveCategory creates a category when id is 0, otherwise updates it.
func SaveCategory(db *gorm.DB, id uint, name, description string) (*course.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("Name is required!")
	}
	slug := utils.Slugify(name)

	var dup int64
	if err := db.Unscoped().Model(&course.Category{}).Where("(name = ? OR slug = ?) AND id <> ?", name, slug, id).Count(&dup).Error; err != nil {
		return nil, errors.Wrap(err, "check category")
	}
	if dup > 0 {
		return nil, conflict("Category already exists!")
	}

	cat := course.Category{Name: name, Slug: slug, Description: description}
	if id == 0 {
		if err := db.Create(&cat).Error; err != nil {
			return nil, errors.Wrap(err, "create category")
		}
		return &cat, nil
	}

	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Category not found!")
		}
		return nil, errors.Wrap(err, "load category")
	}
	cat.Name, cat.Slug, cat.Description = name, slug, description
	if err := db.Model(&cat).Select("name", "slug", "description").Updates(&cat).Error; err != nil {
		return nil, errors.Wrap(err, "update category")
	}
	return &cat, nil
}

// DeleteCategory retires a category and detaches its courses.
func DeleteCategory(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&course.Category{}).Where("id = ? AND is_deleted = ?", id, false).Update("is_deleted", true)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete category")
		}
		if res.RowsAffected == 0 {
			return notFound("Category not found!")
		}
		return errors.Wrap(tx.Model(&course.Course{}).Where("category_id = ?", id).Update("category_id", nil).Error, "detach courses")
	})
}

// CourseAccess resolves whether the caller may see full content of c.
func CourseAccess(db *gorm.DB, userID uint, role string, c *course.Course) (bool, *course.Enrollment, error) {
	if userID == 0 {
		return false, nil, nil
	}
	if role == models.RoleAdmin || c.InstructorID == userID {
		return true, nil, nil
	}
	e, ok, err := ActiveEnrollment(db, userID, c.ID, time.Now())
	return ok, e, err
}
