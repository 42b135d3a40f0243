package models

// Request bodies accepted by the backend. Optional fields are pointers or
// omitempty so partial updates serialize the way the API expects.

type LoginRequest struct {
	// Login accepts username, email or phone.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type CreateDoctorRequest struct {
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Specialization  string        `json:"specialization"`
	Qualifications  []string      `json:"qualifications,omitempty"`
	Experience      int           `json:"experience,omitempty"`
	Bio             string        `json:"bio,omitempty"`
	ConsultationFee float64       `json:"consultationFee,omitempty"`
	AvailableDays   []string      `json:"availableDays,omitempty"`
	WorkingHours    *WorkingHours `json:"workingHours,omitempty"`
}

type UpdateDoctorRequest struct {
	Username        string        `json:"username,omitempty"`
	Password        string        `json:"password,omitempty"`
	FirstName       string        `json:"firstName,omitempty"`
	LastName        string        `json:"lastName,omitempty"`
	Email           string        `json:"email,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	Specialization  string        `json:"specialization,omitempty"`
	Qualifications  []string      `json:"qualifications,omitempty"`
	Experience      int           `json:"experience,omitempty"`
	Bio             string        `json:"bio,omitempty"`
	ConsultationFee float64       `json:"consultationFee,omitempty"`
	AvailableDays   []string      `json:"availableDays,omitempty"`
	WorkingHours    *WorkingHours `json:"workingHours,omitempty"`
	IsActive        *bool         `json:"isActive,omitempty"`
}

type CreateServiceRequest struct {
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Category    string        `json:"category"`
	Price       float64       `json:"price"`
	Duration    int           `json:"duration"`
}

type UpdateServiceRequest struct {
	Name        *LocalizedText `json:"name,omitempty"`
	Description *LocalizedText `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Duration    *int           `json:"duration,omitempty"`
	IsActive    *bool          `json:"isActive,omitempty"`
}

type CreateAppointmentRequest struct {
	Doctor          string `json:"doctor"`
	Service         string `json:"service"`
	AppointmentDate string `json:"appointmentDate"`
	StartTime       string `json:"startTime"`
	Notes           string `json:"notes,omitempty"`
}

type UpdateAppointmentRequest struct {
	AppointmentDate string            `json:"appointmentDate,omitempty"`
	StartTime       string            `json:"startTime,omitempty"`
	Status          AppointmentStatus `json:"status,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	Username  string `json:"username,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type UpdateUserRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
}
