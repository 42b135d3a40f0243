package services

import (
	"context"
	"io"

	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
)

// DoctorService wraps /doctors.
type DoctorService struct {
	client *apiclient.Client
}

func NewDoctorService(c *apiclient.Client) *DoctorService {
	return &DoctorService{client: c}
}

func (s *DoctorService) List(ctx context.Context, p ListParams) (*apiclient.Response[[]models.Doctor], error) {
	return apiclient.Get[[]models.Doctor](ctx, s.client, "/doctors", p.query())
}

func (s *DoctorService) Get(ctx context.Context, id string) (*apiclient.Response[models.Doctor], error) {
	return apiclient.Get[models.Doctor](ctx, s.client, "/doctors/"+id, nil)
}

// GetWithUser includes the doctor's linked login account.
func (s *DoctorService) GetWithUser(ctx context.Context, id string) (*apiclient.Response[models.Doctor], error) {
	return apiclient.Get[models.Doctor](ctx, s.client, "/doctors/"+id+"/with-user", nil)
}

func (s *DoctorService) Create(ctx context.Context, req models.CreateDoctorRequest) (*apiclient.Response[models.Doctor], error) {
	return apiclient.Post[models.Doctor](ctx, s.client, "/doctors", req)
}

func (s *DoctorService) Update(ctx context.Context, id string, req models.UpdateDoctorRequest) (*apiclient.Response[models.Doctor], error) {
	return apiclient.Put[models.Doctor](ctx, s.client, "/doctors/"+id, req)
}

func (s *DoctorService) Delete(ctx context.Context, id string) (*apiclient.Response[struct{}], error) {
	return apiclient.Delete[struct{}](ctx, s.client, "/doctors/"+id)
}

type UsernameAvailability struct {
	Username    string `json:"username"`
	IsAvailable bool   `json:"isAvailable"`
}

func (s *DoctorService) CheckUsername(ctx context.Context, username string) (*apiclient.Response[UsernameAvailability], error) {
	return apiclient.Get[UsernameAvailability](ctx, s.client, "/doctors/check-username", apiclient.Query{"username": username})
}

// Availability returns the doctor's free slots, optionally for one date
// (YYYY-MM-DD).
func (s *DoctorService) Availability(ctx context.Context, id, date string) (*apiclient.Response[[]string], error) {
	return apiclient.Get[[]string](ctx, s.client, "/doctors/"+id+"/availability", apiclient.Query{"date": date})
}

func (s *DoctorService) UploadProfileImage(ctx context.Context, id, fileName string, file io.Reader) (*apiclient.Response[models.Doctor], error) {
	return apiclient.PatchForm[models.Doctor](ctx, s.client, "/doctors/"+id+"/profile-image", nil, "image", fileName, file)
}
