package model

// DashboardStats represents the admin dashboard counters
type DashboardStats struct {
	TotalUsers    int64   `json:"total_users"` // accounts with the user role only
	TotalCabs     int64   `json:"total_cabs"`
	TotalBookings int64   `json:"total_bookings"`
	TotalRevenue  float64 `json:"total_revenue"` // sum over completed bookings
}
