// Package models holds the wire types of the clinic backend API.
// Shapes match the backend response contract exactly.
package models

// Role names known to the backend.
const (
	RoleUser       = "user"
	RoleDoctor     = "doctor"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Permission keys used by the admin console.
const (
	PermUsersManage      = "users:manage"
	PermUsersRead        = "users:read"
	PermDoctorsRead      = "doctors:read"
	PermDoctorsManage    = "doctors:manage"
	PermServicesRead     = "services:read"
	PermAppointmentsRead = "appointments:read"
)

type Role struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`
}

type ProfileImage struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

type User struct {
	ID              string        `json:"_id"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	FullName        string        `json:"fullName,omitempty"`
	Username        string        `json:"username,omitempty"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone,omitempty"`
	ProfileImage    *ProfileImage `json:"profileImage,omitempty"`
	Role            Role          `json:"role"`
	AuthProvider    string        `json:"authProvider,omitempty"`
	DoctorProfile   string        `json:"doctorProfile,omitempty"`
	IsActive        bool          `json:"isActive"`
	IsEmailVerified bool          `json:"isEmailVerified"`
	CreatedAt       string        `json:"createdAt,omitempty"`
	UpdatedAt       string        `json:"updatedAt,omitempty"`
	LastLogin       string        `json:"lastLogin,omitempty"`
}

type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DoctorUser is the linked login account of a doctor profile.
type DoctorUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	IsActive bool   `json:"isActive,omitempty"`
}

type Doctor struct {
	ID              string        `json:"_id"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	FullName        string        `json:"fullName,omitempty"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Specialization  string        `json:"specialization"`
	Qualifications  []string      `json:"qualifications,omitempty"`
	Experience      int           `json:"experience,omitempty"`
	Bio             string        `json:"bio,omitempty"`
	ConsultationFee float64       `json:"consultationFee,omitempty"`
	WorkingHours    *WorkingHours `json:"workingHours,omitempty"`
	AvailableDays   []string      `json:"availableDays,omitempty"`
	Rating          float64       `json:"rating,omitempty"`
	TotalReviews    int           `json:"totalReviews,omitempty"`
	ProfileImage    *ProfileImage `json:"profileImage,omitempty"`
	Languages       []string      `json:"languages,omitempty"`
	IsActive        bool          `json:"isActive"`
	User            *DoctorUser   `json:"user,omitempty"`
	CreatedAt       string        `json:"createdAt,omitempty"`
	UpdatedAt       string        `json:"updatedAt,omitempty"`
}

// LocalizedText carries the three content languages of the site.
type LocalizedText struct {
	Uz string `json:"uz"`
	Ru string `json:"ru"`
	En string `json:"en"`
}

type ClinicService struct {
	ID          string        `json:"_id"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Category    string        `json:"category"`
	Price       float64       `json:"price"`
	Duration    int           `json:"duration"`
	Image       *ProfileImage `json:"image,omitempty"`
	IsActive    bool          `json:"isActive"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	UpdatedAt   string        `json:"updatedAt,omitempty"`
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

type Appointment struct {
	ID              string            `json:"_id"`
	Patient         string            `json:"patient"`
	Doctor          string            `json:"doctor"`
	Service         string            `json:"service"`
	AppointmentDate string            `json:"appointmentDate"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime,omitempty"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       string            `json:"createdAt,omitempty"`
	UpdatedAt       string            `json:"updatedAt,omitempty"`
}

type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
}
