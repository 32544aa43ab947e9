// Package directory holds the patient and doctor rosters the scheduler
// draws from. Both are thin reference entities; the clinical record
// behind a patient lives elsewhere.
package directory

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"nombre_completo" json:"nombre_completo"`
	Phone     *string   `db:"telefono" json:"telefono,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"nombre_completo" json:"nombre_completo"`
	Specialty *string   `db:"especialidad" json:"especialidad,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
