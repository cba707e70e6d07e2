package model

import "time"

// Cab represents a vehicle and its driver
type Cab struct {
	ID           string    `json:"id"`
	DriverName   string    `json:"driver_name"`
	CarModel     string    `json:"car_model"`
	LicensePlate string    `json:"license_plate"`
	Capacity     int       `json:"capacity"`
	PricePerKm   float64   `json:"price_per_km"`
	Location     string    `json:"location"`
	IsAvailable  bool      `json:"is_available"`
	DriverPhone  string    `json:"driver_phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CabRequest is used for creating and updating a cab.
// Availability is not part of it: only the booking flow moves that flag.
type CabRequest struct {
	DriverName   string  `json:"driverName" validate:"required"`
	CarModel     string  `json:"carModel" validate:"required"`
	LicensePlate string  `json:"licensePlate" validate:"required"`
	Capacity     int     `json:"capacity" validate:"gt=0"`
	PricePerKm   float64 `json:"pricePerKm" validate:"gt=0"`
	Location     string  `json:"location" validate:"required"`
	DriverPhone  string  `json:"driverPhone" validate:"required"`
}

// Apply copies the request fields onto the cab
func (r CabRequest) Apply(c *Cab) {
	c.DriverName = r.DriverName
	c.CarModel = r.CarModel
	c.LicensePlate = r.LicensePlate
	c.Capacity = r.Capacity
	c.PricePerKm = r.PricePerKm
	c.Location = r.Location
	c.DriverPhone = r.DriverPhone
}
