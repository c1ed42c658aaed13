package forms

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

const (
	msgPriceInvalid    = "Введите корректную цену."
	msgPriceNegative   = "Цена не может быть отрицательной."
	msgLevelInvalid    = "Выберите корректный уровень."
	msgDegreeInvalid   = "Выберите корректную степень."
	msgCapacityInvalid = "Количество мест должно быть от 1 до 100."
	msgDurationInvalid = "Продолжительность должна быть не меньше 1 часа."
)

// CourseForm creates or updates a course. Slug is only read on creation.
type CourseForm struct {
	Title        string `form:"title" json:"title" validate:"trimmin=2,max=200"`
	Slug         string `form:"slug" json:"slug" validate:"omitempty,max=200"`
	Description  string `form:"description" json:"description" validate:"required"`
	Duration     int    `form:"duration" json:"duration"`
	InstructorID string `form:"instructor_id" json:"instructor_id" validate:"omitempty,uuid"`
	Level        string `form:"level" json:"level"`
	MaxStudents  *int   `form:"max_students" json:"max_students"`
	Price        string `form:"price" json:"price"`
	Active       *bool  `form:"active" json:"active"`
}

// CourseInput is the cleaned course form.
type CourseInput struct {
	Title        string
	Slug         string
	Description  string
	Duration     int
	InstructorID *string
	Level        models.CourseLevel
	MaxStudents  int
	Price        decimal.Decimal
	Active       bool
}

// Clean validates the course fields and applies defaults.
func (f *CourseForm) Clean() (CourseInput, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Description = strings.TrimSpace(f.Description)
	f.InstructorID = strings.TrimSpace(f.InstructorID)
	f.Level = strings.ToUpper(strings.TrimSpace(f.Level))
	f.Price = strings.TrimSpace(f.Price)

	errs, err := check(f)
	if err != nil {
		return CourseInput{}, err
	}

	in := CourseInput{
		Title:       f.Title,
		Slug:        strings.ToLower(f.Slug),
		Description: f.Description,
		Duration:    f.Duration,
		Level:       models.LevelBeginner,
		MaxStudents: models.DefaultCourseCapacity,
		Price:       decimal.Zero,
		Active:      true,
	}
	if f.Duration < 1 {
		errs.Add("duration", msgDurationInvalid)
	}
	if f.Level != "" {
		in.Level = models.CourseLevel(f.Level)
		if !in.Level.Valid() {
			errs.Add("level", msgLevelInvalid)
		}
	}
	if f.MaxStudents != nil {
		in.MaxStudents = *f.MaxStudents
		if in.MaxStudents < models.MinCourseCapacity || in.MaxStudents > models.MaxCourseCapacity {
			errs.Add("max_students", msgCapacityInvalid)
		}
	}
	if f.Price != "" {
		price, err := decimal.NewFromString(strings.Replace(f.Price, ",", ".", 1))
		switch {
		case err != nil:
			errs.Add("price", msgPriceInvalid)
		case price.IsNegative():
			errs.Add("price", msgPriceNegative)
		default:
			in.Price = price.Round(2)
		}
	}
	if f.InstructorID != "" {
		id := f.InstructorID
		in.InstructorID = &id
	}
	if f.Active != nil {
		in.Active = *f.Active
	}
	return in, errs.Err()
}

// Values echoes the submitted input.
func (f CourseForm) Values() map[string]string {
	return map[string]string{
		"title":         f.Title,
		"slug":          f.Slug,
		"description":   f.Description,
		"instructor_id": f.InstructorID,
		"level":         f.Level,
		"price":         f.Price,
	}
}

// InstructorForm creates or updates an instructor.
type InstructorForm struct {
	FirstName      string `form:"first_name" json:"first_name" validate:"trimmin=2,max=100"`
	LastName       string `form:"last_name" json:"last_name" validate:"trimmin=2,max=100"`
	Email          string `form:"email" json:"email" validate:"required,email,max=254"`
	Specialization string `form:"specialization" json:"specialization" validate:"required,max=200"`
	Degree         string `form:"degree" json:"degree"`
	Bio            string `form:"bio" json:"bio"`
	Active         *bool  `form:"active" json:"active"`
}

// Clean validates the instructor fields.
func (f *InstructorForm) Clean() (models.Instructor, error) {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = normalizeEmail(f.Email)
	f.Specialization = strings.TrimSpace(f.Specialization)
	f.Degree = strings.ToUpper(strings.TrimSpace(f.Degree))
	f.Bio = strings.TrimSpace(f.Bio)

	errs, err := check(f)
	if err != nil {
		return models.Instructor{}, err
	}
	if !models.Degree(f.Degree).Valid() {
		errs.Add("degree", msgDegreeInvalid)
	}
	active := true
	if f.Active != nil {
		active = *f.Active
	}
	return models.Instructor{
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		Email:          f.Email,
		Specialization: f.Specialization,
		Degree:         models.Degree(f.Degree),
		Bio:            f.Bio,
		Active:         active,
	}, errs.Err()
}

// Values echoes the submitted input.
func (f InstructorForm) Values() map[string]string {
	return map[string]string{
		"first_name":     f.FirstName,
		"last_name":      f.LastName,
		"email":          f.Email,
		"specialization": f.Specialization,
		"degree":         f.Degree,
		"bio":            f.Bio,
	}
}
