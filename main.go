package main

import (
	"flag"

	"github.com/modo-agency/web/server"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "config file path")
	flag.Parse()

	server.RunServer(*configPath)
}
