package dto

import "github.com/noah-isme/fefu-lab-api/internal/models"

// ProfileResponse is the caller's own account and profile.
type ProfileResponse struct {
	User         models.User     `json:"user"`
	Profile      *models.Student `json:"profile,omitempty"`
	FacultyLabel string          `json:"faculty_label,omitempty"`
	RoleLabel    string          `json:"role_label,omitempty"`
	Faculties    []Choice        `json:"faculties"`
}

// Choice is one option of an enumerated form field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FacultyChoices lists every faculty as form options.
func FacultyChoices() []Choice {
	choices := make([]Choice, 0, len(models.Faculties()))
	for _, f := range models.Faculties() {
		choices = append(choices, Choice{Value: string(f), Label: f.Label()})
	}
	return choices
}
