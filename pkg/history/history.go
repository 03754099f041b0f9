package history

import (
	"encoding/hex"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/mapinterp/pkg/database/dbconn"
	"github.com/tauraamui/mapinterp/pkg/database/models"
	"github.com/tauraamui/mapinterp/pkg/database/repos"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/pipeline"
	"github.com/tauraamui/xerror"
	"golang.org/x/crypto/blake2b"
)

// Recorder keeps a row per video generation run.
type Recorder struct {
	repo *repos.RunRepository
	fs   afero.Fs
	now  func() time.Time
}

func NewRecorder(db dbconn.GormWrapper, fs afero.Fs) *Recorder {
	return &Recorder{
		repo: &repos.RunRepository{DB: db},
		fs:   fs,
		now:  time.Now,
	}
}

func (r *Recorder) Started(runID string, req pipeline.Request) (*models.Run, error) {
	run := models.Run{
		UUID:            runID,
		Layer:           req.Layer,
		BBox:            req.BBox.String(),
		Width:           req.Size.W,
		Height:          req.Size.H,
		Start:           req.Start,
		End:             req.End,
		IntervalMinutes: req.IntervalMinutes,
		FPS:             req.FPS,
		OutputPath:      req.OutputPath,
		Status:          models.RunStarted,
	}
	if err := r.repo.Create(&run); err != nil {
		return nil, xerror.Errorf("unable to record run %s: %w", runID, err)
	}
	return &run, nil
}

// Finished stores the outcome of run. A successful run records the
// frame count and a BLAKE2b-256 digest of the written file.
func (r *Recorder) Finished(run *models.Run, summary pipeline.Summary, runErr error) error {
	finished := r.now()
	run.FinishedAt = &finished

	if runErr != nil {
		run.Status = models.RunFailed
		run.Error = runErr.Error()
		return r.repo.Update(run)
	}

	run.Status = models.RunSucceeded
	run.Frames = summary.Frames
	sum, err := Checksum(r.fs, summary.Path)
	if err != nil {
		log.Warn("Unable to checksum %s: %v", summary.Path, err)
	}
	run.Checksum = sum
	return r.repo.Update(run)
}

func (r *Recorder) List(limit int) ([]models.Run, error) {
	return r.repo.List(limit)
}

func Checksum(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
