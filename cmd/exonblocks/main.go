// cmd/exonblocks/main.go
package main

import (
	"exonblocks/internal/app"
	"exonblocks/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
