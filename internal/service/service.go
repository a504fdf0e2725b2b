// Package service maps each backend capability of the recycling-rewards API
// to one method. Errors from the HTTP client are returned unchanged.
package service

import (
	"context"
	"fmt"

	"recolector/internal/httpclient"
	"recolector/internal/models"
)

type Service struct {
	c *httpclient.Client
}

func New(c *httpclient.Client) *Service {
	return &Service{c: c}
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := s.c.Post(ctx, "/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.c.Post(ctx, "/logout", nil, nil)
}

func (s *Service) PointsSummary(ctx context.Context) (*models.PointsSummary, error) {
	var out models.PointsSummary
	if err := s.c.Get(ctx, "/recolector/puntos", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCodes returns issued codes, optionally filtered server-side by status.
func (s *Service) ListCodes(ctx context.Context, q models.CodeQuery) ([]models.QRCode, error) {
	var out models.List[models.QRCode]
	if err := s.c.Get(ctx, "/recolector/qrs", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCollection registers delivered waste and returns the claim code.
func (s *Service) CreateCollection(ctx context.Context, req models.CreateCollectionRequest) (*models.CreatedCode, error) {
	var out models.CreatedCode
	if err := s.c.Post(ctx, "/recolector/transacciones", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) PendingRedemptions(ctx context.Context) ([]models.Redemption, error) {
	var out models.List[models.Redemption]
	if err := s.c.Get(ctx, "/recolector/canjes-pendientes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CompletedRedemptions(ctx context.Context) ([]models.Redemption, error) {
	var out models.List[models.Redemption]
	if err := s.c.Get(ctx, "/recolector/canjes-completados", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) MarkDelivered(ctx context.Context, id int64) error {
	return s.c.Patch(ctx, fmt.Sprintf("/recolector/transacciones/%d/entregar", id), nil, nil)
}

func (s *Service) ReceivedWaste(ctx context.Context, q models.WasteQuery) (*models.ReceivedWastePage, error) {
	var out models.ReceivedWastePage
	if err := s.c.Get(ctx, "/recolector/residuos-recibidos", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) WasteTypes(ctx context.Context) ([]models.WasteType, error) {
	var out models.List[models.WasteType]
	if err := s.c.Get(ctx, "/tipos-residuos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CollectionPoints(ctx context.Context) ([]models.CollectionPoint, error) {
	var out models.List[models.CollectionPoint]
	if err := s.c.Get(ctx, "/puntos-acopio", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile fetches the account. The API replies with either the bare user or {user: ...}.
func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	var out struct {
		models.User
		Wrapped *models.User `json:"user"`
	}
	if err := s.c.Get(ctx, "/perfil", nil, &out); err != nil {
		return nil, err
	}
	if out.Wrapped != nil {
		return out.Wrapped, nil
	}
	return &out.User, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req models.ProfileUpdate) (*models.ProfileResponse, error) {
	var out models.ProfileResponse
	if err := s.c.Put(ctx, "/perfil", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) ChangePassword(ctx context.Context, req models.PasswordChange) (*models.Message, error) {
	var out models.Message
	if err := s.c.Patch(ctx, "/perfil/password", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
