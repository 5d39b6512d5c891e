// previewd is the preview pipeline's HTTP server, a thin wrapper around
// "previewctl serve" for deployments that want a single-purpose binary
// (e.g. one systemd unit, one container entrypoint) instead of the
// full previewctl command tree.
package main

import "github.com/packsafe/previewcore/internal/cli"

func main() {
	cli.ExecuteServe()
}
