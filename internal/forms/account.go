package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

const (
	msgEmailTaken       = "Пользователь с таким email уже существует."
	msgPasswordMismatch = "Пароли не совпадают."
	msgRoleNotAllowed   = "Выбранная роль недоступна для регистрации."
	msgFacultyInvalid   = "Выберите корректный факультет."
	msgLoginFailed      = "Введите правильные email и пароль."
)

// EmailChecker answers whether an account other than excludeUserID uses email.
type EmailChecker interface {
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
}

// RegistrationForm creates an account and its profile.
type RegistrationForm struct {
	FirstName       string `form:"first_name" json:"first_name" validate:"trimmin=2,max=150"`
	LastName        string `form:"last_name" json:"last_name" validate:"trimmin=2,max=150"`
	Email           string `form:"email" json:"email" validate:"required,email,max=254"`
	Password        string `form:"password" json:"password" validate:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" validate:"required"`
	Faculty         string `form:"faculty" json:"faculty" validate:"required"`
	Role            string `form:"role" json:"role"`
}

// Clean validates the registration. allowedRoles restricts the selectable roles.
func (f *RegistrationForm) Clean(ctx context.Context, emails EmailChecker, allowedRoles []models.Role) error {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = normalizeEmail(f.Email)
	f.Faculty = strings.ToUpper(strings.TrimSpace(f.Faculty))
	f.Role = strings.ToUpper(strings.TrimSpace(f.Role))
	if f.Role == "" {
		f.Role = string(models.RoleStudent)
	}

	errs, err := check(f)
	if err != nil {
		return err
	}

	if !errs.Has("faculty") && !models.Faculty(f.Faculty).Valid() {
		errs.Add("faculty", msgFacultyInvalid)
	}
	if !roleAllowed(models.Role(f.Role), allowedRoles) {
		errs.Add("role", msgRoleNotAllowed)
	}
	if f.Password != "" && f.PasswordConfirm != "" && f.Password != f.PasswordConfirm {
		errs.AddForm(msgPasswordMismatch)
	}
	if !errs.Has("email") && emails != nil {
		taken, err := emails.EmailTaken(ctx, f.Email, "")
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}
	return errs.Err()
}

// Values echoes the submitted input without the passwords.
func (f RegistrationForm) Values() map[string]string {
	return map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"email":      f.Email,
		"faculty":    f.Faculty,
		"role":       f.Role,
	}
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	if !role.Valid() {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// LoginForm accepts an email or a username.
type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
	Next     string `form:"next" json:"next"`
}

// Clean checks that both credentials were supplied.
func (f *LoginForm) Clean() error {
	f.Username = strings.TrimSpace(f.Username)
	errs, err := check(f)
	if err != nil {
		return err
	}
	return errs.Err()
}

// Values echoes the identifier only.
func (f LoginForm) Values() map[string]string {
	return map[string]string{"username": f.Username, "next": f.Next}
}

// LoginFailed is the single message shown for every rejected login.
func LoginFailed() error {
	errs := Errors{}
	errs.AddForm(msgLoginFailed)
	return errs.Err()
}

// ProfileForm edits the caller's own account and profile.
type ProfileForm struct {
	FirstName string `form:"first_name" json:"first_name" validate:"trimmin=2,max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"trimmin=2,max=150"`
	Email     string `form:"email" json:"email" validate:"required,email,max=254"`
	Phone     string `form:"phone" json:"phone" validate:"max=20"`
	Bio       string `form:"bio" json:"bio" validate:"max=2000"`
	Faculty   string `form:"faculty" json:"faculty" validate:"required"`
}

// Clean validates the profile edit for the account userID.
func (f *ProfileForm) Clean(ctx context.Context, emails EmailChecker, userID string) error {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = normalizeEmail(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Bio = strings.TrimSpace(f.Bio)
	f.Faculty = strings.ToUpper(strings.TrimSpace(f.Faculty))

	errs, err := check(f)
	if err != nil {
		return err
	}
	if !errs.Has("faculty") && !models.Faculty(f.Faculty).Valid() {
		errs.Add("faculty", msgFacultyInvalid)
	}
	if !errs.Has("email") && emails != nil {
		taken, err := emails.EmailTaken(ctx, f.Email, userID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}
	return errs.Err()
}

// Values echoes the submitted input.
func (f ProfileForm) Values() map[string]string {
	return map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"email":      f.Email,
		"phone":      f.Phone,
		"bio":        f.Bio,
		"faculty":    f.Faculty,
	}
}

// Update converts the cleaned form into a profile update.
func (f ProfileForm) Update(userID string) models.ProfileUpdate {
	return models.ProfileUpdate{
		UserID:    userID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		Bio:       f.Bio,
		Faculty:   models.Faculty(f.Faculty),
	}
}

// EmailTaken reports the duplicate email rule as a field error. Used when the
// unique index catches a registration that passed Clean concurrently.
func EmailTaken() error {
	errs := Errors{}
	errs.Add("email", msgEmailTaken)
	return errs.Err()
}
