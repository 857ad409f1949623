package main

import (
	// Register Plugins via side-effects
	_ "boxlink/internal/collectors/http"
	_ "boxlink/internal/collectors/relay"
	_ "boxlink/internal/publishers/file"
	_ "boxlink/internal/publishers/github"
	_ "boxlink/internal/publishers/stdout"
)

func main() {
	Execute()
}
