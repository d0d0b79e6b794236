package server

import (
	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/server/auth"
	"github.com/cafecanaima/canaima/server/db"
	"github.com/cafecanaima/canaima/server/http"
	"github.com/pkg/errors"
)

// Config is the global application config.
type Config struct {
	db.DBConfig
	http.HTTPConfig
	auth.AuthConfig
}

func NewConfig() Config {
	return Config{
		DBConfig:   db.NewConfig(),
		HTTPConfig: http.NewConfig(),
		AuthConfig: auth.NewConfig(),
	}
}

// Validator is used for configs.
type Validator interface {
	Validate() error
}

func (c *Config) Validate() error {
	var fields = []Validator{
		&c.DBConfig,
		&c.HTTPConfig,
		&c.AuthConfig,
	}

	for _, v := range fields {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func CreateAdmin(config Config, profile canaima.UserProfile, password []byte) error {
	return db.CreateAdmin(config.DBConfig, profile, string(password))
}

type App struct {
	*http.Routes
	Database *db.Database
}

func New(config Config) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s, err := auth.NewSigner(config.AuthConfig)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create token signer")
	}

	d, err := db.NewDatabase(config.DBConfig)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create database")
	}

	h, err := http.New(d, s, config.HTTPConfig)
	if err != nil {
		d.Close()
		return nil, errors.Wrap(err, "Failed to create HTTP")
	}

	app := &App{
		Routes:   h,
		Database: d,
	}

	return app, nil
}

// Close closes the database.
func (a *App) Close() error {
	return a.Database.Close()
}
