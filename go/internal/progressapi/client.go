package progressapi

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

// Client is the remote replica reached over the ProgressService API
type Client struct {
	get    *connect.Client[GetProgressRequest, GetProgressResponse]
	update *connect.Client[UpdateProgressRequest, UpdateProgressResponse]
	create *connect.Client[CreateProgressRequest, CreateProgressResponse]
	delete *connect.Client[DeleteProgressRequest, DeleteProgressResponse]
}

// NewClient creates a client for the service at baseURL authenticating with tokens
func NewClient(httpClient connect.HTTPClient, baseURL string, tokens TokenSource, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(NewBearerInterceptor(tokens)),
	}, opts...)

	return &Client{
		get:    connect.NewClient[GetProgressRequest, GetProgressResponse](httpClient, baseURL+GetProgressProcedure, opts...),
		update: connect.NewClient[UpdateProgressRequest, UpdateProgressResponse](httpClient, baseURL+UpdateProgressProcedure, opts...),
		create: connect.NewClient[CreateProgressRequest, CreateProgressResponse](httpClient, baseURL+CreateProgressProcedure, opts...),
		delete: connect.NewClient[DeleteProgressRequest, DeleteProgressResponse](httpClient, baseURL+DeleteProgressProcedure, opts...),
	}
}

// Fetch returns nil without error when the identity has no record
func (c *Client) Fetch(ctx context.Context, id models.Identity) (*models.ProgressState, error) {
	resp, err := c.get.CallUnary(ctx, connect.NewRequest(&GetProgressRequest{Identity: id}))
	if connect.CodeOf(err) == connect.CodeNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	state := resp.Msg.Progress
	state.Identity = id
	return &state, nil
}

func (c *Client) Update(ctx context.Context, id models.Identity, patch models.ProgressPatch) error {
	_, err := c.update.CallUnary(ctx, connect.NewRequest(&UpdateProgressRequest{Identity: id, Patch: patch}))
	return mapError(err)
}

// Create writes the replicated fields of state; the user name is left to the account
func (c *Client) Create(ctx context.Context, id models.Identity, state models.ProgressState) error {
	state.UserName = ""
	_, err := c.create.CallUnary(ctx, connect.NewRequest(&CreateProgressRequest{Identity: id, Progress: state}))
	return mapError(err)
}

func (c *Client) Delete(ctx context.Context, id models.Identity) error {
	_, err := c.delete.CallUnary(ctx, connect.NewRequest(&DeleteProgressRequest{Identity: id}))
	return mapError(err)
}

// mapError translates connect codes into the progress error taxonomy
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch connect.CodeOf(err) {
	case connect.CodeUnauthenticated:
		return fmt.Errorf("%w: %w", progress.ErrUnauthenticated, err)
	case connect.CodeFailedPrecondition:
		return fmt.Errorf("%w: %w", progress.ErrRecordMissing, err)
	default:
		return fmt.Errorf("%w: %w", progress.ErrTransientNetwork, err)
	}
}
