package config

import (
	"github.com/tauraamui/mapinterp/pkg/interp"
	"github.com/tauraamui/mapinterp/pkg/video/videobackend"
	"github.com/tauraamui/mapinterp/pkg/video/videolabel"
	"github.com/tauraamui/mapinterp/pkg/wms"
)

type defaultSettingKey uint

const (
	WMSVERSION     defaultSettingKey = 0x0
	SRS            defaultSettingKey = 0x1
	FORMAT         defaultSettingKey = 0x2
	REQUESTTIMEOUT defaultSettingKey = 0x3
	FETCHWORKERS   defaultSettingKey = 0x4
	VIDEOBACKEND   defaultSettingKey = 0x5
	DEVICE         defaultSettingKey = 0x6
	TILESIZE       defaultSettingKey = 0x7
	SEED           defaultSettingKey = 0x8
	DATETIMEFORMAT defaultSettingKey = 0x9
	FPS            defaultSettingKey = 0xa
)

var defaultSettings = map[defaultSettingKey]interface{}{
	WMSVERSION:     wms.DefaultVersion,
	SRS:            wms.DefaultSRS,
	FORMAT:         wms.DefaultFormat,
	REQUESTTIMEOUT: 60,
	FETCHWORKERS:   1,
	VIDEOBACKEND:   videobackend.OpenCVName,
	DEVICE:         string(interp.CPU),
	TILESIZE:       interp.DefaultTileSize,
	SEED:           interp.DefaultSeed,
	DATETIMEFORMAT: videolabel.DefaultFormat,
	FPS:            30,
}
