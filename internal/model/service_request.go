package model

import "time"

// JobTypes lists the job types a request may carry.  "Other" requires
// a non-empty description at validation time.
var JobTypes = []string{
	"Car Wash",
	"Oil Change",
	"Engine Light",
	"Brake Pad Replacement",
	"Battery Replacement",
	"Other",
}

// ValidJobType reports whether s is one of the known job types.
func ValidJobType(s string) bool {
	for _, jt := range JobTypes {
		if jt == s {
			return true
		}
	}
	return false
}

// ServiceRequest is the central entity of the system, mirroring the
// `service_requests` table.  Status, assignment and the location
// sharing fields are only ever written through the workflow transition
// authority; the customer and car references are immutable after
// creation.
//
// Fields:
//  ID                 – primary key identifier.
//  CustomerID         – creating customer (immutable).
//  CarID              – car being serviced (immutable).
//  JobType            – one of JobTypes.
//  Description        – free-form details; required when JobType is "Other".
//  PickupLocation     – where the concierge collects the car.
//  DropoffLocation    – where the car is returned.
//  Status             – workflow status string.
//  AssignedTo         – concierge or dealer user currently responsible (nullable).
//  AssignedDealer     – dealer organisation doing repair work (nullable).
//  ShareLocation      – whether the assigned concierge is sharing live position.
//  ConciergeLatitude  – last shared latitude (nullable).
//  ConciergeLongitude – last shared longitude (nullable).
//  RequestedAt        – set once at creation.
//  LastUpdated        – bumped on every mutation.
type ServiceRequest struct {
	ID                 uint64    // service_requests.id
	CustomerID         uint64    // service_requests.customer_id
	CarID              uint64    // service_requests.car_id
	JobType            string    // service_requests.job_type
	Description        string    // service_requests.description
	PickupLocation     string    // service_requests.pickup_location
	DropoffLocation    string    // service_requests.dropoff_location
	Status             string    // service_requests.status
	AssignedTo         *uint64   // service_requests.assigned_to (nullable)
	AssignedDealer     *uint64   // service_requests.assigned_dealer (nullable)
	ShareLocation      bool      // service_requests.share_location
	ConciergeLatitude  *float64  // service_requests.concierge_latitude (nullable)
	ConciergeLongitude *float64  // service_requests.concierge_longitude (nullable)
	RequestedAt        time.Time // service_requests.requested_at
	LastUpdated        time.Time // service_requests.last_updated
}

// RepairNote records a dealer mechanic's note against a request,
// mirroring the `repair_notes` table.
//
// Fields:
//  ID               – primary key identifier.
//  ServiceRequestID – request the note belongs to.
//  MechanicID       – dealer-role user who wrote it (nullable if the
//                     account was deleted).
//  Note             – free-form text.
//  CreatedAt        – timestamp of creation.
type RepairNote struct {
	ID               uint64    // repair_notes.id
	ServiceRequestID uint64    // repair_notes.service_request_id
	MechanicID       *uint64   // repair_notes.mechanic_id (nullable)
	Note             string    // repair_notes.note
	CreatedAt        time.Time // repair_notes.created_at
}
