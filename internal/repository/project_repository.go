package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-dashboard/internal/model"
)

// ProjectRepository manages the projects collection.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create stores project and assigns it a fresh id.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	project.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", translate(err))
	}
	return nil
}

// ListByOwner returns the owner's projects ordered by name.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name COLLATE NOCASE ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).First(&project).Error; err != nil {
		return nil, fmt.Errorf("find project %s: %w", id, translate(err))
	}
	return &project, nil
}

// DeleteCascade removes the project's tasks and then the project inside one
// transaction. It returns the number of tasks removed.
func (r *ProjectRepository) DeleteCascade(ctx context.Context, ownerID, id string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := deleteTasksByProject(tx, ownerID, id)
		if err != nil {
			return err
		}

		res := tx.Where("owner_id = ? AND id = ?", ownerID, id).Delete(&model.Project{})
		if res.Error != nil {
			return fmt.Errorf("delete project: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
