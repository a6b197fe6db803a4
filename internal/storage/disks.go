package storage

import (
	"filemanager/internal/models"
)

// Disks pairs the public and the private store. Files pick one by visibility.
type Disks struct {
	Public  Storage
	Private Storage
}

// DisksConfig describes both disks; they share credentials and differ by bucket.
type DisksConfig struct {
	Type           string
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	PublicBucket   string
	PrivateBucket  string
	BasePath       string
	BaseURL        string
}

// NewDisks builds the public/private pair
func NewDisks(cfg DisksConfig) (*Disks, error) {
	build := func(name, bucket string) (Storage, error) {
		c := Config{
			Type:           cfg.Type,
			Name:           name,
			Bucket:         bucket,
			Region:         cfg.Region,
			AccessKey:      cfg.AccessKey,
			SecretKey:      cfg.SecretKey,
			Endpoint:       cfg.Endpoint,
			PublicEndpoint: cfg.PublicEndpoint,
		}
		if cfg.Type == "local" {
			c.BasePath = joinNonEmpty(cfg.BasePath, name)
			c.BaseURL = joinNonEmpty(cfg.BaseURL, name)
		}
		return NewStorage(c)
	}

	public, err := build("public", cfg.PublicBucket)
	if err != nil {
		return nil, err
	}
	private, err := build("private", cfg.PrivateBucket)
	if err != nil {
		return nil, err
	}
	return &Disks{Public: public, Private: private}, nil
}

// For selects the disk for the given visibility
func (d *Disks) For(v models.Visibility) Storage {
	if v == models.VisibilityPublic {
		return d.Public
	}
	return d.Private
}

func joinNonEmpty(base, name string) string {
	if base == "" {
		return ""
	}
	for len(base) > 1 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + name
}
