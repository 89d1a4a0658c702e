package config

import (
	"path/filepath"
	"strings"
)

type StorageConfig interface {
	GetDataFolder() string
	GetDatabasePath() string
	GetImagesPath() string
	GetImagesPublicURL() string
	GetMaxUploadBytes() int64
}

type Storage struct {
	dataFolder      string
	imagesPublicURL string
	maxUploadBytes  int64
}

var _ StorageConfig = Storage{}

func newStorage(v Values) Storage {
	folder := strings.TrimSpace(v.DataFolder)
	if folder == "" {
		folder = "./data"
	}
	maxBytes := v.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return Storage{
		dataFolder:      folder,
		imagesPublicURL: strings.TrimRight(strings.TrimSpace(v.ImagesPublicURL), "/"),
		maxUploadBytes:  maxBytes,
	}
}

func (s Storage) GetDataFolder() string {
	return s.dataFolder
}

func (s Storage) GetDatabasePath() string {
	return filepath.Join(s.dataFolder, "site.db")
}

func (s Storage) GetImagesPath() string {
	return filepath.Join(s.dataFolder, "images")
}

// GetImagesPublicURL is the base URL images are served from. Empty means the
// built-in /api/images route on the site origin.
func (s Storage) GetImagesPublicURL() string {
	return s.imagesPublicURL
}

func (s Storage) GetMaxUploadBytes() int64 {
	return s.maxUploadBytes
}
