package booking

// Elevator describes the elevator available at a site.
type Elevator string

const (
	ElevatorNone  Elevator = "none"
	ElevatorSmall Elevator = "small"
	ElevatorLarge Elevator = "large"
)

// Stairs roughly grades the stair effort at a site.
type Stairs string

const (
	StairsNone Stairs = "none"
	StairsFew  Stairs = "few"
	StairsMany Stairs = "many"
)

// Parking grades how hard it is to park a truck at a site.
type Parking string

const (
	ParkingEasy   Parking = "easy"
	ParkingMedium Parking = "medium"
	ParkingHard   Parking = "hard"
)

// AccessProfile describes the physical access situation at one site
// (start, destination, or pickup). Profiles are independent per site;
// a combined booking may reuse the start profile for pickup.
type AccessProfile struct {
	Floor             int
	Elevator          Elevator
	Stairs            Stairs
	Parking           Parking
	NeedNoParkingZone bool
	CarryDistanceM    int
}
