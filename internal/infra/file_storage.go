package infra

import (
	"fmt"

	"github.com/Vovarama1992/mediavault/internal/config"
	"github.com/Vovarama1992/mediavault/internal/ports"
)

func NewFileStorage(cfg config.StorageConfig) (ports.FileStorage, error) {
	switch cfg.Driver {
	case config.StorageS3:
		client, err := NewS3Client(cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3Storage(client, cfg.S3.Bucket), nil
	case config.StorageLocal, "":
		return NewLocalStorage(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
