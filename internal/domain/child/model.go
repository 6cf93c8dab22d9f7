package child

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Child maps to the child table. UID is the human-facing registry number
// minted at registration from the facility's location and counter; ID is the
// row key everything else references.
type Child struct {
	ID               uuid.UUID `db:"id" json:"id"`
	UID              string    `db:"uid" json:"uid"`
	FullName         string    `db:"full_name" json:"full_name"`
	Sex              string    `db:"sex" json:"sex"`
	DateOfBirth      time.Time `db:"date_of_birth" json:"date_of_birth"`
	PlaceOfBirth     string    `db:"place_of_birth" json:"place_of_birth"`
	CaregiverName    string    `db:"caregiver_name" json:"caregiver_name"`
	CaregiverContact string    `db:"caregiver_contact" json:"caregiver_contact"`
	CaregiverAddress string    `db:"caregiver_address" json:"caregiver_address"`
	FacilityID       uuid.UUID `db:"facility_id" json:"facility_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	LastUpdated      time.Time `db:"last_updated" json:"last_updated"`
}

// MintUID builds a registry number: two state letters, two LGA letters, the
// facility code, then the zero-padded counter. "FCT"/"AMAC"/"01"/7 ->
// "FCAM010007".
func MintUID(state, lga, facilityCode string, counter int) string {
	return strings.ToUpper(state[:2]) + strings.ToUpper(lga[:2]) + facilityCode +
		fmt.Sprintf("%04d", counter)
}
