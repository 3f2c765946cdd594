// cmd/zserve/main.go
package main

import (
	"context"
	"flag"
	"log"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/mfreeman451/zserve/pkg/config"
	"github.com/mfreeman451/zserve/pkg/core"
	"github.com/mfreeman451/zserve/pkg/lifecycle"
)

func main() {
	log.Printf("Starting zserve...")

	configPath := flag.String("config", "", "Path to config file (.json, .yaml or .toml)")
	listenAddr := flag.String("listen", "", "Listen address, overrides listen_addr")
	root := flag.String("root", "", "Directory to serve, overrides root")
	basePath := flag.String("base", "", "URL base path, overrides base_path")
	noList := flag.Bool("no-list", false, "Disable directory listings")
	pprofAddr := flag.String("pprof", "", "Serve pprof on this address, overrides pprof_addr")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	applyFlags(&cfg, *listenAddr, *root, *basePath, *pprofAddr, *noList)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if cfg.PprofAddr != "" {
		profiler := prof.NewProf()
		go profiler.PprofWeb(cfg.PprofAddr)

		log.Printf("pprof listening on %s", cfg.PprofAddr)
	}

	server, err := core.NewServer(&cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	opts := &lifecycle.ServerOptions{
		ListenAddr:      cfg.ListenAddr,
		ServiceName:     "zserve",
		Handler:         server.Handler(),
		Service:         server,
		TLSCertFile:     cfg.TLS.CertFile,
		TLSKeyFile:      cfg.TLS.KeyFile,
		MaxConnections:  cfg.MaxConnections,
		ReadTimeout:     cfg.ReadTimeout.Std(),
		WriteTimeout:    cfg.WriteTimeout.Std(),
		IdleTimeout:     cfg.IdleTimeout.Std(),
		ShutdownTimeout: cfg.ShutdownTimeout.Std(),
	}

	if err := lifecycle.RunServer(context.Background(), opts); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func loadConfig(path string) (config.ServerConfig, error) {
	var cfg config.ServerConfig

	if path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// applyFlags lets command line values win over the config file, then fills
// the remaining defaults.
func applyFlags(cfg *config.ServerConfig, listenAddr, root, basePath, pprofAddr string, noList bool) {
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	if root != "" {
		cfg.Root = root
	}

	if basePath != "" {
		cfg.BasePath = basePath
	}

	if pprofAddr != "" {
		cfg.PprofAddr = pprofAddr
	}

	if noList {
		disabled := false
		cfg.DirectoryListing = &disabled
	}

	cfg.ApplyDefaults()
}
