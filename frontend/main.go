// Command frontend serves the front end alone, reading the catalogue from a
// Canaima API server elsewhere.
package main

import (
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/cafecanaima/canaima/client"
	"github.com/cafecanaima/canaima/frontend/frontserver"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	toml "github.com/pelletier/go-toml"
)

type Config struct {
	ListenAddress  string `toml:"listenAddress"`
	BackendAddress string `toml:"backendAddress"`
	frontserver.FrontConfig
}

func NewConfig() Config {
	return Config{
		ListenAddress: ":8081",
		FrontConfig:   frontserver.NewConfig(),
	}
}

func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("Field `listenAddress' missing")
	}
	if c.BackendAddress == "" {
		return errors.New("Field `backendAddress' missing")
	}

	_, err := url.Parse(c.BackendAddress)
	if err != nil {
		return errors.Wrap(err, "Failed to parse value of `backendAddress'")
	}

	return c.FrontConfig.Validate()
}

var (
	configGlob = "./config*.toml"
)

func init() {
	pflag.StringVarP(
		&configGlob, "config", "c", configGlob,
		"Path to config file with glob support for fallback",
	)
}

func main() {
	pflag.Parse()

	// Read all globs.
	d, err := filepath.Glob(configGlob)
	if err != nil {
		log.Fatalln("Failed to glob:", err)
	}

	if len(d) == 0 {
		log.Fatalln("Glob returns no matches.")
	}

	var cfg = NewConfig()

	for _, path := range d {
		f, err := ioutil.ReadFile(path)
		if err != nil {
			log.Fatalln("Failed to read globbed config file:", err)
		}

		if err := toml.Unmarshal(f, &cfg); err != nil {
			log.Fatalln("Failed to unmarshal from TOML:", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalln("Config error:", err)
	}

	c, err := client.NewClient(cfg.BackendAddress)
	if err != nil {
		log.Fatalln("Failed to create API client:", err)
	}

	f, err := frontserver.New(c, cfg.FrontConfig)
	if err != nil {
		log.Fatalln("Failed to create frontend:", err)
	}

	log.Println("Listening to", cfg.ListenAddress)

	if err := http.ListenAndServe(cfg.ListenAddress, f); err != nil {
		log.Fatalln("Failed to listen/serve:", err)
	}
}
