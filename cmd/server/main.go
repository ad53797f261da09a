package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/simp-lee/showroom/internal/app"
	"github.com/simp-lee/showroom/internal/config"
)

// version is stamped at build time:
// go build -ldflags "-X main.version=v1.2.0" ./cmd/server
var version = "dev"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("showroom", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("failed to create app: ", err)
	}

	if err := a.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}
