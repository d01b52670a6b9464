package dto

type ImageRequest struct {
	URL      string `json:"url" binding:"required"`
	Filename string `json:"filename"`
}

type ListingRequest struct {
	Title          string         `json:"title" binding:"required"`
	Destination    string         `json:"destination" binding:"required"`
	Description    string         `json:"description" binding:"required"`
	Images         []ImageRequest `json:"images" binding:"dive"`
	Price          float64        `json:"price"`
	StartLocation  string         `json:"start_location" binding:"required"`
	EndLocation    string         `json:"end_location" binding:"required"`
	TravelMode     string         `json:"travel_mode"`
	Category       string         `json:"category"`
	Facilities     []string       `json:"facilities"`
	TotalSeats     int            `json:"total_seats" binding:"required,gt=0"`
	AvailableSeats *int           `json:"available_seats"`
	IsActive       *bool          `json:"is_active"`
	Country        string         `json:"country"`
}

type CreateBookingRequest struct {
	CustomerName string `json:"customer_name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Persons      int    `json:"persons" binding:"required,gt=0"`
	// TravelDate is either YYYY-MM-DD or RFC3339.
	TravelDate string `json:"travel_date" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type RegisterRequest struct {
	Username       string `json:"username" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Password       string `json:"password" binding:"required"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

type AdminRegisterRequest struct {
	RegisterRequest
	AdminSecret string `json:"admin_secret" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
