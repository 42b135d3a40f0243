package services

import (
	"context"

	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
)

// AppointmentFilters extend the shared list params with appointment-specific
// filtering.
type AppointmentFilters struct {
	ListParams
	Status    models.AppointmentStatus
	DoctorID  string
	PatientID string
	DateFrom  string
	DateTo    string
}

func (f AppointmentFilters) query() apiclient.Query {
	q := f.ListParams.query()
	q["status"] = string(f.Status)
	q["doctorId"] = f.DoctorID
	q["patientId"] = f.PatientID
	q["dateFrom"] = f.DateFrom
	q["dateTo"] = f.DateTo
	return q
}

// AppointmentService wraps /appointments.
type AppointmentService struct {
	client *apiclient.Client
}

func NewAppointmentService(c *apiclient.Client) *AppointmentService {
	return &AppointmentService{client: c}
}

func (s *AppointmentService) List(ctx context.Context, f AppointmentFilters) (*apiclient.Response[[]models.Appointment], error) {
	return apiclient.Get[[]models.Appointment](ctx, s.client, "/appointments", f.query())
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*apiclient.Response[models.Appointment], error) {
	return apiclient.Get[models.Appointment](ctx, s.client, "/appointments/"+id, nil)
}

func (s *AppointmentService) Create(ctx context.Context, req models.CreateAppointmentRequest) (*apiclient.Response[models.Appointment], error) {
	return apiclient.Post[models.Appointment](ctx, s.client, "/appointments", req)
}

func (s *AppointmentService) Update(ctx context.Context, id string, req models.UpdateAppointmentRequest) (*apiclient.Response[models.Appointment], error) {
	return apiclient.Patch[models.Appointment](ctx, s.client, "/appointments/"+id, req)
}

func (s *AppointmentService) Cancel(ctx context.Context, id string) (*apiclient.Response[models.Appointment], error) {
	return apiclient.Patch[models.Appointment](ctx, s.client, "/appointments/"+id+"/cancel", nil)
}

func (s *AppointmentService) Confirm(ctx context.Context, id string) (*apiclient.Response[models.Appointment], error) {
	return apiclient.Patch[models.Appointment](ctx, s.client, "/appointments/"+id+"/confirm", nil)
}

func (s *AppointmentService) Complete(ctx context.Context, id string) (*apiclient.Response[models.Appointment], error) {
	return apiclient.Patch[models.Appointment](ctx, s.client, "/appointments/"+id+"/complete", nil)
}

func (s *AppointmentService) MarkNoShow(ctx context.Context, id string) (*apiclient.Response[models.Appointment], error) {
	return apiclient.Patch[models.Appointment](ctx, s.client, "/appointments/"+id+"/no-show", nil)
}

// My lists the calling patient's own appointments.
func (s *AppointmentService) My(ctx context.Context, f AppointmentFilters) (*apiclient.Response[[]models.Appointment], error) {
	return apiclient.Get[[]models.Appointment](ctx, s.client, "/appointments/my", f.query())
}

// DoctorBookings lists the calling doctor's booked appointments.
func (s *AppointmentService) DoctorBookings(ctx context.Context, f AppointmentFilters) (*apiclient.Response[[]models.Appointment], error) {
	return apiclient.Get[[]models.Appointment](ctx, s.client, "/appointments/doctor/bookings", f.query())
}

// DoctorTodayQueue returns today's queue for the calling doctor.
func (s *AppointmentService) DoctorTodayQueue(ctx context.Context) (*apiclient.Response[[]models.Appointment], error) {
	return apiclient.Get[[]models.Appointment](ctx, s.client, "/appointments/doctor/queue", nil)
}
