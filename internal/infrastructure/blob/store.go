package blob

import (
	"context"
	"fmt"

	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/pkg/config"
)

// Drivers soportados para el archivo de reportes.
const (
	DriverFilesystem = "fs"
	DriverS3         = "s3"
)

// Open elige el almacén de reportes según REPORTS_DRIVER.
func Open(ctx context.Context, cfg config.ReportsConfig) (ports.ReportStore, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		store, err := NewFilesystem(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		store, err := NewS3(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("blob: driver %q desconocido", cfg.Driver)
	}
}
