package browser

import "time"

// Provider types understood by TypeProvider.
const (
	TypeChromeHeadless = "chrome-headless"
	TypeChrome         = "chrome"
	TypeRemote         = "remote"
)

// Config selects and shapes the browser behind a TypeProvider. It is read
// under the BROWSER_ prefix, e.g. BROWSER_TYPE.
//
// Profile is a chrome user data directory. Unset, every session gets a
// fresh temporary one.
type Config struct {
	Type      string        `envconfig:"TYPE" default:"chrome-headless"`
	Profile   string        `envconfig:"PROFILE"`
	RemoteURL string        `envconfig:"REMOTE_URL"`
	Width     int           `envconfig:"WIDTH" default:"1280"`
	Height    int           `envconfig:"HEIGHT" default:"800"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"30s"`
}
