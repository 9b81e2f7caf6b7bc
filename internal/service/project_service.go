package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/repository/specification"
	"bytebuddhi-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrProjectNotFound = errors.New("project not found")

type IProjectService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllProjectsResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error)
	Reindex(ctx context.Context, userId uuid.UUID, id uuid.UUID, files []dto.ProjectFileUpload) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type projectService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewProjectService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IProjectService {
	return &projectService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *projectService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project := entity.Project{
		Id:          uuid.New(),
		UserId:      userId,
		Name:        req.Name,
		Description: req.Description,
		Status:      entity.ProjectStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := uow.ProjectRepository().Create(ctx, &project); err != nil {
		return nil, err
	}

	// Hand the files off to the indexing worker.
	msgPayload := dto.PublishIndexProjectMessage{
		ProjectId: project.Id,
		Files:     req.Files,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.CreateProjectResponse{
		Id:     project.Id,
		Status: string(project.Status),
	}, nil
}

func (c *projectService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllProjectsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.ByUserId{UserId: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetAllProjectsResponse, 0)
	for _, project := range projects {
		result = append(result, &dto.GetAllProjectsResponse{
			Id:          project.Id,
			Name:        project.Name,
			Description: project.Description,
			Status:      string(project.Status),
			ChunkCount:  project.ChunkCount,
			CreatedAt:   project.CreatedAt,
			UpdatedAt:   project.UpdatedAt,
		})
	}

	return result, nil
}

func (c *projectService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserId{UserId: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	return &dto.ShowProjectResponse{
		Id:          project.Id,
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		ChunkCount:  project.ChunkCount,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}, nil
}

// Reindex re-queues a project with a fresh set of files. The old chunks are
// replaced atomically by the consumer once the new embeddings are ready.
func (c *projectService) Reindex(ctx context.Context, userId uuid.UUID, id uuid.UUID, files []dto.ProjectFileUpload) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserId{UserId: userId},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}

	if err := uow.ProjectRepository().UpdateStatus(ctx, project.Id, entity.ProjectStatusPending, project.ChunkCount); err != nil {
		return err
	}

	msgPayload := dto.PublishIndexProjectMessage{
		ProjectId: project.Id,
		Files:     files,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}

	return c.publisherService.Publish(ctx, msgJson)
}

func (c *projectService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserId{UserId: userId},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CodeChunkRepository().DeleteByProjectId(ctx, project.Id); err != nil {
		return err
	}
	if err := uow.ProjectRepository().Delete(ctx, project.Id); err != nil {
		return err
	}

	return uow.Commit()
}
