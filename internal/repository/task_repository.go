package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-dashboard/internal/model"
)

// TaskRepository handles CRUD for the tasks collection.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	task.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", translate(err))
	}
	return nil
}

// ListByOwner returns every task of ownerID, newest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, taskID).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task %s: %w", taskID, translate(err))
	}
	return &task, nil
}

// SetCompleted stores the completion flag of a task and returns the updated row.
func (r *TaskRepository) SetCompleted(ctx context.Context, ownerID, taskID string, completed bool) (*model.Task, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("owner_id = ? AND id = ?", ownerID, taskID).
		Update("completed", completed)
	if res.Error != nil {
		return nil, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update task %s: %w", taskID, ErrNotFound)
	}
	return r.FindByID(ctx, ownerID, taskID)
}

// Delete removes a task for the given owner.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	res := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %s: %w", taskID, ErrNotFound)
	}
	return nil
}

func deleteTasksByProject(db *gorm.DB, ownerID, projectID string) (int64, error) {
	res := db.Where("owner_id = ? AND project_id = ?", ownerID, projectID).Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete project tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
