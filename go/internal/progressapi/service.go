package progressapi

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mcdev12/reckoning/go/internal/authgate"
	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

// ProgressApp defines what the service layer needs from the progress application
type ProgressApp interface {
	GetProgress(ctx context.Context, id models.Identity) (models.ProgressState, error)
	UpdateProgress(ctx context.Context, id models.Identity, patch models.ProgressPatch) error
	CreateProgress(ctx context.Context, id models.Identity, state models.ProgressState) error
	DeleteProgress(ctx context.Context, id models.Identity) error
}

// Service implements the ProgressService connect API
type Service struct {
	app ProgressApp
}

// NewService creates a new progress service
func NewService(app ProgressApp) *Service {
	return &Service{app: app}
}

// NewHandler builds the HTTP handler serving every ProgressService procedure
func NewHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetProgressProcedure, connect.NewUnaryHandler(GetProgressProcedure, svc.GetProgress, opts...))
	mux.Handle(UpdateProgressProcedure, connect.NewUnaryHandler(UpdateProgressProcedure, svc.UpdateProgress, opts...))
	mux.Handle(CreateProgressProcedure, connect.NewUnaryHandler(CreateProgressProcedure, svc.CreateProgress, opts...))
	mux.Handle(DeleteProgressProcedure, connect.NewUnaryHandler(DeleteProgressProcedure, svc.DeleteProgress, opts...))
	return "/" + ServiceName + "/", mux
}

// GetProgress returns the caller's progress record
func (s *Service) GetProgress(ctx context.Context, req *connect.Request[GetProgressRequest]) (*connect.Response[GetProgressResponse], error) {
	id, err := callerIdentity(ctx, req.Msg.Identity)
	if err != nil {
		return nil, err
	}

	state, err := s.app.GetProgress(ctx, id)
	if errors.Is(err, remotestore.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	return connect.NewResponse(&GetProgressResponse{Progress: state}), nil
}

// UpdateProgress applies a partial update to an existing record
func (s *Service) UpdateProgress(ctx context.Context, req *connect.Request[UpdateProgressRequest]) (*connect.Response[UpdateProgressResponse], error) {
	id, err := callerIdentity(ctx, req.Msg.Identity)
	if err != nil {
		return nil, err
	}

	err = s.app.UpdateProgress(ctx, id, req.Msg.Patch)
	switch {
	case errors.Is(err, ErrInvalidPatch):
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, remotestore.ErrNotFound):
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	case err != nil:
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	return connect.NewResponse(&UpdateProgressResponse{}), nil
}

// CreateProgress writes a complete record, replacing any existing one
func (s *Service) CreateProgress(ctx context.Context, req *connect.Request[CreateProgressRequest]) (*connect.Response[CreateProgressResponse], error) {
	id, err := callerIdentity(ctx, req.Msg.Identity)
	if err != nil {
		return nil, err
	}

	if err := s.app.CreateProgress(ctx, id, req.Msg.Progress); err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	return connect.NewResponse(&CreateProgressResponse{}), nil
}

// DeleteProgress removes the caller's record
func (s *Service) DeleteProgress(ctx context.Context, req *connect.Request[DeleteProgressRequest]) (*connect.Response[DeleteProgressResponse], error) {
	id, err := callerIdentity(ctx, req.Msg.Identity)
	if err != nil {
		return nil, err
	}

	if err := s.app.DeleteProgress(ctx, id); err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	return connect.NewResponse(&DeleteProgressResponse{}), nil
}

// callerIdentity resolves the authenticated identity; requests may only name their own record
func callerIdentity(ctx context.Context, requested models.Identity) (models.Identity, error) {
	id, ok := authgate.IdentityFromContext(ctx)
	if !ok {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("no authenticated identity"))
	}
	if requested != "" && requested != id {
		return "", connect.NewError(connect.CodePermissionDenied, errors.New("identity does not match token"))
	}
	return id, nil
}
