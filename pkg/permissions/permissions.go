// Package permissions defines the capability bits carried on every user
// row. The bit layout is part of the stored data format and must not be
// reordered.
package permissions

// Permission is a bitset of named capabilities.
type Permission int64

const (
	// Administrator bypasses every capability check.
	Administrator Permission = 1 << 0
	// ViewUsers lifts the "only rows related to me" scoping on list queries.
	ViewUsers Permission = 1 << 1
	// CreateViolation allows logging violations against any plate.
	CreateViolation Permission = 1 << 2
	// CreateVehicle allows registering vehicles for other users.
	CreateVehicle Permission = 1 << 3
	// CreateRefutation allows refuting violations on vehicles the caller
	// does not own.
	CreateRefutation Permission = 1 << 4
	// RespondRefutation allows writing the administrative response to a
	// refutation.
	RespondRefutation Permission = 1 << 5
	// ManageDetected gates the camera-detected candidate surface.
	ManageDetected Permission = 1 << 6
)

// Has reports whether all bits in flag are set.
func (p Permission) Has(flag Permission) bool {
	return p&flag == flag
}

// Allows reports whether the capability check "administrator OR flag"
// passes. Every authorization decision in the registry goes through this
// form; a specific flag is never checked alone.
func (p Permission) Allows(flag Permission) bool {
	return p.Has(Administrator) || p.Has(flag)
}

func (p Permission) Administrator() bool     { return p.Has(Administrator) }
func (p Permission) ViewUsers() bool         { return p.Has(ViewUsers) }
func (p Permission) CreateViolation() bool   { return p.Has(CreateViolation) }
func (p Permission) CreateVehicle() bool     { return p.Has(CreateVehicle) }
func (p Permission) CreateRefutation() bool  { return p.Has(CreateRefutation) }
func (p Permission) RespondRefutation() bool { return p.Has(RespondRefutation) }
func (p Permission) ManageDetected() bool    { return p.Has(ManageDetected) }
