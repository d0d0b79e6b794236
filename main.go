package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/frontend/frontserver"
	"github.com/cafecanaima/canaima/server"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/net/http2"

	toml "github.com/pelletier/go-toml"
)

var (
	configGlob = "./config*.toml"
	noFrontend = false

	admin canaima.UserProfile
)

func stderrlnf(f string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", v...)
}

type Config struct {
	// ListenAddress is a TCP address, or a Unix socket path prefixed with
	// "unix:".
	ListenAddress string `toml:"listenAddress"`
	SocketPerm    string `toml:"socketPerm"`

	frontserver.FrontConfig
	server.Config
}

func NewConfig() Config {
	return Config{
		ListenAddress: ":8080",
		FrontConfig:   frontserver.NewConfig(),
		Config:        server.NewConfig(),
	}
}

func init() {
	pflag.StringVarP(
		&configGlob, "config", "c", configGlob,
		"Path to config file with glob support for fallback",
	)

	pflag.BoolVarP(
		&noFrontend, "no-frontend", "n", noFrontend,
		"Disable the default frontend at root",
	)

	pflag.StringVar(&admin.Name, "name", "", "create-admin: short name")
	pflag.StringVar(&admin.FullName, "full-name", "", "create-admin: full name")
	pflag.StringVar(&admin.Telephone, "telephone", "", "create-admin: telephone")
	pflag.StringVar(&admin.Address, "address", "", "create-admin: address")
	pflag.StringVar(&admin.Email, "email", "", "create-admin: email")

	pflag.Usage = func() {
		stderrlnf("Usage: %s [subcommand] [flags...]", filepath.Base(os.Args[0]))
		stderrlnf("Subcommands:")
		stderrlnf("  create-admin   Create an admin account")
		stderrlnf("  serve          Run the HTTP server")
		stderrlnf("Flags:")
		pflag.PrintDefaults()
	}
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

	switch pflag.Arg(0) {
	case "create-admin":
		createAdmin(cfg)

	case "serve":
		fallthrough
	default:
		serve(cfg)
	}
}

func createAdmin(cfg Config) {
	in := bufio.NewReader(os.Stdin)

	// Prompt for whatever the flags left out.
	var fields = []struct {
		prompt string
		value  *string
	}{
		{"Name", &admin.Name},
		{"Full name", &admin.FullName},
		{"Telephone", &admin.Telephone},
		{"Address", &admin.Address},
		{"Email", &admin.Email},
	}

	for _, field := range fields {
		if *field.value != "" {
			continue
		}

		fmt.Printf("%s: ", field.prompt)

		l, err := in.ReadString('\n')
		if err != nil {
			log.Fatalln("Failed to read input:", err)
		}

		*field.value = strings.TrimSpace(l)
	}

	fmt.Print("Enter your password: ")
	p, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalln("Failed to read password:", err)
	}

	fmt.Println()

	if err := server.CreateAdmin(cfg.Config, admin, p); err != nil {
		log.Fatalln(err)
	}

	log.Println("Created admin", admin.Email)
}

func serve(cfg Config) {
	a, err := server.New(cfg.Config)
	if err != nil {
		log.Fatalln("Failed to create instance:", err)
	}
	defer a.Close()

	c := middleware.NewCompressor(5)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	mux := chi.NewMux()
	mux.Use(middleware.Logger)
	mux.Use(c.Handler)
	mux.Mount("/api/v1", a)

	if !noFrontend {
		f, err := frontserver.New(a.Database, cfg.FrontConfig)
		if err != nil {
			log.Fatalln("Failed to create frontend:", err)
		}
		mux.Mount("/", f)
	}

	l, err := listen(cfg)
	if err != nil {
		log.Fatalln("Failed to listen:", err)
	}

	var server = http.Server{
		Handler: mux,
	}

	// Explicitly set up HTTP/2.
	err = http2.ConfigureServer(&server, &http2.Server{
		MaxHandlers:          4096,
		MaxConcurrentStreams: 1024,
	})

	if err != nil {
		log.Fatalln("Failed to configure HTTP/2 server:", err)
	}

	log.Println("Starting HTTP/2 listener at", l.Addr())

	go func() {
		if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalln("Failed to start:", err)
		}
	}()

	// Handle SIGINT and gracefully close the server.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig

	// Give the server a 10 seconds timeout for shutting down.
	ctx, cancel := context.WithTimeout(context.TODO(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Failed to gracefully close the server:", err)
	}
}

func listen(cfg Config) (net.Listener, error) {
	socket := strings.TrimPrefix(cfg.ListenAddress, "unix:")
	if socket == cfg.ListenAddress {
		return net.Listen("tcp", cfg.ListenAddress)
	}

	// Ensure that the socket is cleaned up if the last run didn't.
	if err := os.Remove(socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to clean up old socket: %w", err)
	}

	l, err := net.Listen("unix", socket)
	if err != nil {
		return nil, err
	}

	if cfg.SocketPerm != "" {
		o, err := strconv.ParseUint(cfg.SocketPerm, 8, 32)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to parse socket perm in octal: %w", err)
		}
		if err := os.Chmod(socket, os.FileMode(o)); err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to chmod socket: %w", err)
		}
	}

	return l, nil
}
