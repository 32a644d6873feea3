package progressapi

import "github.com/mcdev12/reckoning/go/internal/models"

const ServiceName = "reckoning.progress.v1.ProgressService"

const (
	GetProgressProcedure    = "/" + ServiceName + "/GetProgress"
	UpdateProgressProcedure = "/" + ServiceName + "/UpdateProgress"
	CreateProgressProcedure = "/" + ServiceName + "/CreateProgress"
	DeleteProgressProcedure = "/" + ServiceName + "/DeleteProgress"
)

type GetProgressRequest struct {
	Identity models.Identity `json:"identity"`
}

type GetProgressResponse struct {
	Progress models.ProgressState `json:"progress"`
}

// UpdateProgressRequest carries a partial update; omitted fields are left as stored
type UpdateProgressRequest struct {
	Identity models.Identity      `json:"identity"`
	Patch    models.ProgressPatch `json:"patch"`
}

type UpdateProgressResponse struct{}

type CreateProgressRequest struct {
	Identity models.Identity      `json:"identity"`
	Progress models.ProgressState `json:"progress"`
}

type CreateProgressResponse struct{}

type DeleteProgressRequest struct {
	Identity models.Identity `json:"identity"`
}

type DeleteProgressResponse struct{}
