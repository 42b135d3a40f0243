package services

import (
	"context"
	"io"

	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
)

// UserService wraps /users (superadmin surface).
type UserService struct {
	client *apiclient.Client
}

func NewUserService(c *apiclient.Client) *UserService {
	return &UserService{client: c}
}

func (s *UserService) List(ctx context.Context, p ListParams) (*apiclient.Response[[]models.User], error) {
	return apiclient.Get[[]models.User](ctx, s.client, "/users", p.query())
}

func (s *UserService) Get(ctx context.Context, id string) (*apiclient.Response[models.User], error) {
	return apiclient.Get[models.User](ctx, s.client, "/users/"+id, nil)
}

func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*apiclient.Response[models.User], error) {
	return apiclient.Post[models.User](ctx, s.client, "/users", req)
}

func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*apiclient.Response[models.User], error) {
	return apiclient.Patch[models.User](ctx, s.client, "/users/"+id, req)
}

func (s *UserService) Delete(ctx context.Context, id string) (*apiclient.Response[struct{}], error) {
	return apiclient.Delete[struct{}](ctx, s.client, "/users/"+id)
}

func (s *UserService) Activate(ctx context.Context, id string) (*apiclient.Response[models.User], error) {
	return apiclient.Patch[models.User](ctx, s.client, "/users/"+id+"/activate", nil)
}

func (s *UserService) Deactivate(ctx context.Context, id string) (*apiclient.Response[models.User], error) {
	return apiclient.Patch[models.User](ctx, s.client, "/users/"+id+"/deactivate", nil)
}

func (s *UserService) UploadProfileImage(ctx context.Context, id, fileName string, file io.Reader) (*apiclient.Response[models.User], error) {
	return apiclient.PatchForm[models.User](ctx, s.client, "/users/"+id+"/profile-image", nil, "image", fileName, file)
}
