package model

import "time"

// Block marks a calendar date as unavailable. An empty ProfessionalID makes
// the block clinic-wide; otherwise it only affects the named professional.
type Block struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Date           string    `json:"date" bson:"date" validate:"required,ymd_date"`
	ProfessionalID string    `json:"professional_id,omitempty" bson:"professional_id,omitempty" validate:"omitempty,min=1,max=64"`
	Reason         string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// AppliesTo reports whether the block makes the date unavailable for the given
// professional. Clinic-wide blocks apply to everyone.
func (b *Block) AppliesTo(professionalID string) bool {
	return b.ProfessionalID == "" || b.ProfessionalID == professionalID
}
