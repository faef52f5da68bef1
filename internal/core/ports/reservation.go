package ports

import "context"

//go:generate mockgen -source=reservation.go -destination=mocks/mock_reservation.go -package=mocks

// Reservation is an exclusively held directory.
type Reservation interface {
	// Path returns the reserved directory.
	Path() string
	// Release gives up the reservation.
	Release() error
}

// ReservationManager hands out exclusive directories.
type ReservationManager interface {
	// TryReserveExact reserves the directory with exactly the given name.
	// It returns nil and no error when another holder owns it.
	TryReserveExact(name string) (Reservation, error)

	// Reserve reserves the first free directory named after parts and a slot index.
	Reserve(ctx context.Context, parts ...string) (Reservation, error)

	// Root returns the directory that contains all reservations.
	Root() string
}
