package main

import (
	"os"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
