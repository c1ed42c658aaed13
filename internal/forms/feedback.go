package forms

import "strings"

// FeedbackForm is the contact form. It is validated but never persisted.
type FeedbackForm struct {
	Name    string `form:"name" json:"name" validate:"trimmin=2"`
	Email   string `form:"email" json:"email" validate:"required,email"`
	Subject string `form:"subject" json:"subject" validate:"required,max=200"`
	Message string `form:"message" json:"message" validate:"trimmin=10"`
}

// Clean trims the input and validates it.
func (f *FeedbackForm) Clean() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)

	errs, err := check(f)
	if err != nil {
		return err
	}
	return errs.Err()
}

// Values echoes the submitted input.
func (f FeedbackForm) Values() map[string]string {
	return map[string]string{"name": f.Name, "email": f.Email, "subject": f.Subject, "message": f.Message}
}
