package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tauraamui/mapinterp/pkg/configdef"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/xerror"
)

const (
	vendorName     = "tauraamui"
	appName        = "mapinterp"
	configFileName = "config.json"
)

var fs afero.Fs = afero.NewOsFs()

func load() (configdef.Values, error) {
	var values configdef.Values

	configPath, err := resolveConfigPath()
	if err != nil {
		return configdef.Values{}, err
	}

	log.Debug("Resolved config file location: %s", configPath)
	file, err := readConfigFile(configPath)
	if err != nil {
		return configdef.Values{}, err
	}

	if err := unmarshal(file, &values); err != nil {
		return configdef.Values{}, err
	}

	loadDefaults(&values)

	if err = values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}

	return values, nil
}

func loadDefaults(values *configdef.Values) {
	setIfEmpty(&values.WMSVersion, defaultSettings[WMSVERSION].(string))
	setIfEmpty(&values.SRS, defaultSettings[SRS].(string))
	setIfEmpty(&values.Format, defaultSettings[FORMAT].(string))
	setIfEmpty(&values.VideoBackend, defaultSettings[VIDEOBACKEND].(string))
	setIfEmpty(&values.Device, defaultSettings[DEVICE].(string))
	setIfEmpty(&values.DateTimeFormat, defaultSettings[DATETIMEFORMAT].(string))
	setIfZero(&values.RequestTimeoutSeconds, defaultSettings[REQUESTTIMEOUT].(int))
	setIfZero(&values.FetchWorkers, defaultSettings[FETCHWORKERS].(int))
	setIfZero(&values.TileSize, defaultSettings[TILESIZE].(int))
	setIfZero(&values.FPS, defaultSettings[FPS].(int))
	if values.Seed == 0 {
		values.Seed = defaultSettings[SEED].(int64)
	}
}

func setIfEmpty(field *string, value string) {
	if len(*field) == 0 {
		*field = value
	}
}

func setIfZero(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}

var readConfigFile = func(path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

func unmarshal(content []byte, values *configdef.Values) error {
	err := json.Unmarshal(content, values)
	if err != nil {
		return errors.Errorf("parsing configuration error: %v", err)
	}
	return nil
}

func resolveConfigPath() (string, error) {
	configPath := os.Getenv("MAPINTERP_CONFIG")
	if len(configPath) > 0 {
		return configPath, nil
	}

	configParentDir, err := userConfigDir()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s location: %w", configFileName, err)
	}

	return filepath.Join(
		configParentDir,
		vendorName,
		appName,
		configFileName), nil
}

var userConfigDir = func() (string, error) {
	return os.UserConfigDir()
}
