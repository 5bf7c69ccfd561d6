package main

import (
	"github.com/joho/godotenv"

	"invrec/cmd"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	cmd.Execute()
}
