package model

import "time"

// Progress counts finished tasks against all tasks of a scope.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent returns the integer completion percentage, rounded down.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	pct := p.Completed * 100 / p.Total
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Project groups tasks under a name, a category label and an icon.
type Project struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string    `gorm:"index;size:36" json:"ownerId"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Icon      string    `json:"icon"`
	Progress  Progress  `gorm:"-" json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProgressOf counts the tasks that reference projectID.
func ProgressOf(tasks []Task, projectID string) Progress {
	var p Progress
	for _, t := range tasks {
		if !t.InProject(projectID) {
			continue
		}
		p.Total++
		if t.Completed {
			p.Completed++
		}
	}
	return p
}

// OverallProgress counts every task in tasks.
func OverallProgress(tasks []Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			p.Completed++
		}
	}
	return p
}
