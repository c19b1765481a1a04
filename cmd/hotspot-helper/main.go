// WiFi Hotspot Helper - keeps the Windows hotspot in step with an upstream adapter.
package main

import (
	"os"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/cli"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/version"
)

// Version information, overridden by ldflags for releases.
var (
	Version   = "v1.2.0"
	BuildTime = "2026-10-01"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
