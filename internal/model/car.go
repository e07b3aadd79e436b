package model

// Car represents a customer's vehicle as stored in the `cars` table.
// The owner never changes after creation; a car belongs to exactly one
// customer and may be referenced by any number of service requests.
//
// Fields:
//  ID           – primary key identifier.
//  OwnerID      – customer who owns the car.
//  Model        – free-form make/model text.
//  Year         – model year (nullable, some cars register plate-only).
//  LicensePlate – plate in AA-123-BB format, unique per owner.
type Car struct {
	ID           uint64  // cars.id
	OwnerID      uint64  // cars.owner_id
	Model        string  // cars.model
	Year         *uint16 // cars.year (nullable)
	LicensePlate string  // cars.license_plate
}
