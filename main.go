package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/oogunniyi/portfolio/cmd"
)

// Version is set at build time
var Version = "dev"

func main() {
	cmd.SetVersion(Version)
	cmd.Execute()
}
