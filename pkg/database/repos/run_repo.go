package repos

import (
	"github.com/tauraamui/mapinterp/pkg/database/dbconn"
	"github.com/tauraamui/mapinterp/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type RunRepository struct {
	DB dbconn.GormWrapper
}

func (r *RunRepository) Create(run *models.Run) error {
	return r.DB.Create(run).Error()
}

func (r *RunRepository) Update(run *models.Run) error {
	if run.ID == 0 {
		return xerror.Errorf("run %s has not been created", run.UUID)
	}
	return r.DB.Save(run).Error()
}

func (r *RunRepository) FindByUUID(uuid string) (models.Run, error) {
	run := models.Run{}
	if err := r.DB.Where("uuid = ?", uuid).First(&run).Error(); err != nil {
		return run, xerror.Errorf("run of uuid %s not found", uuid)
	}

	return run, nil
}

// List returns up to limit runs, most recent first.
func (r *RunRepository) List(limit int) ([]models.Run, error) {
	runs := []models.Run{}
	if limit <= 0 {
		limit = 20
	}
	if err := r.DB.Order("created_at desc").Limit(limit).Find(&runs).Error(); err != nil {
		return nil, xerror.Errorf("unable to list runs: %w", err)
	}

	return runs, nil
}
