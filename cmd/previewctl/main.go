// previewctl is the preview pipeline's operator CLI: serve, validate,
// check, and version, grounded on the teacher's thin cmd/*/main.go
// calling into internal/cli.Execute().
package main

import "github.com/packsafe/previewcore/internal/cli"

func main() {
	cli.Execute()
}
