package services

import (
	"context"
	"io"

	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
)

// ClinicServiceService wraps /services (the clinic's medical services, not to
// be confused with this package).
type ClinicServiceService struct {
	client *apiclient.Client
}

func NewClinicServiceService(c *apiclient.Client) *ClinicServiceService {
	return &ClinicServiceService{client: c}
}

func (s *ClinicServiceService) List(ctx context.Context, p ListParams) (*apiclient.Response[[]models.ClinicService], error) {
	return apiclient.Get[[]models.ClinicService](ctx, s.client, "/services", p.query())
}

func (s *ClinicServiceService) Get(ctx context.Context, id string) (*apiclient.Response[models.ClinicService], error) {
	return apiclient.Get[models.ClinicService](ctx, s.client, "/services/"+id, nil)
}

func (s *ClinicServiceService) Create(ctx context.Context, req models.CreateServiceRequest) (*apiclient.Response[models.ClinicService], error) {
	return apiclient.Post[models.ClinicService](ctx, s.client, "/services", req)
}

func (s *ClinicServiceService) Update(ctx context.Context, id string, req models.UpdateServiceRequest) (*apiclient.Response[models.ClinicService], error) {
	return apiclient.Patch[models.ClinicService](ctx, s.client, "/services/"+id, req)
}

func (s *ClinicServiceService) Delete(ctx context.Context, id string) (*apiclient.Response[struct{}], error) {
	return apiclient.Delete[struct{}](ctx, s.client, "/services/"+id)
}

func (s *ClinicServiceService) UploadImage(ctx context.Context, id, fileName string, file io.Reader) (*apiclient.Response[models.ClinicService], error) {
	return apiclient.PatchForm[models.ClinicService](ctx, s.client, "/services/"+id+"/image", nil, "image", fileName, file)
}
