package main

import (
	"github.com/joho/godotenv"

	"github.com/promptgate/promptgate/internal/cmd"
)

func main() {
	// Optional; environment variables may also be set directly.
	_ = godotenv.Load()

	cmd.Execute()
}
