package model

// Dealer represents a dealer organisation as stored in the `dealers`
// table.  A dealer-role user may be linked to at most one organisation;
// the organisation survives staff changes, which is why requests track
// it separately from assigned_to.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – linked dealer-role account (nullable).
//  Name         – organisation name.
//  Phone        – contact phone (optional).
//  Address      – contact address (optional).
//  JobSpecialty – comma-joined job types this dealer handles; entries
//                 outside the known job-type list are free-form
//                 specialties.
type Dealer struct {
	ID           uint64  // dealers.id
	UserID       *uint64 // dealers.user_id (nullable)
	Name         string  // dealers.name
	Phone        string  // dealers.phone
	Address      string  // dealers.address
	JobSpecialty string  // dealers.job_specialty
}
