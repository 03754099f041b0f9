package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/tauraamui/mapinterp/pkg/configdef"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/wms"
	"github.com/tauraamui/xerror"
)

func create() error {
	data, err := loadRawDefaultConfig()
	if err != nil {
		return xerror.Errorf("unable to init default config into memory: %w", err)
	}

	path, err := ensureConfigPath()
	if err != nil {
		return err
	}

	err = writeConfigToDisk(data, path, false)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return configdef.ErrConfigAlreadyExists
		}
		return err
	}

	log.Info("Created default config at %s", path)
	return nil
}

func writeConfigToDisk(data []byte, path string, overwrite bool) error {
	flags := os.O_RDWR | os.O_CREATE
	if !overwrite {
		flags |= os.O_EXCL
	}

	file, err := fs.OpenFile(path, flags, 0666)
	if err != nil {
		return xerror.Errorf("unable to create/open file: %w", err)
	}
	defer file.Close()

	bc, err := file.Write(data)
	if err != nil {
		return xerror.Errorf("unable to write config to file: %s: %w", path, err)
	}

	if bc != len(data) {
		return xerror.Errorf("unable to write full config data to file: %s", path)
	}

	return nil
}

func defaultValues() configdef.Values {
	end := time.Now().UTC().Truncate(time.Hour)
	values := configdef.Values{
		MapURL:          "https://maps.example.com/wms",
		Layer:           "radar:precipitation",
		BBox:            wms.BBox{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90},
		Width:           640,
		Height:          480,
		Start:           end.Add(-6 * time.Hour).Format(time.RFC3339),
		End:             end.Format(time.RFC3339),
		IntervalMinutes: 30,
		OutputPath:      "mapinterp.mp4",
		DateTimeLabel:   true,
		History:         true,
	}
	loadDefaults(&values)
	return values
}

func loadRawDefaultConfig() ([]byte, error) {
	return json.MarshalIndent(defaultValues(), "", " ")
}

func ensureConfigPath() (string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return "", xerror.Errorf("unable to resolve config path: %w", err)
	}

	parentDirPath := filepath.Dir(path)
	if _, err := fs.Stat(parentDirPath); errors.Is(err, os.ErrNotExist) {
		err = fs.MkdirAll(parentDirPath, os.ModeDir|os.ModePerm)
		if err != nil {
			return "", xerror.Errorf("unable to create config parent directory: %w", err)
		}
	}

	return path, nil
}
