// Package template renders user-configurable names, such as the default
// export file name, with the sprout function library.
package template

import (
	"os"
	"strings"
	"time"

	"github.com/AntoineGS/tidybrew/internal/platform"
)

// dateLayout is the format of Context.Date.
const dateLayout = "2006-01-02"

// Context holds the host data available to every template.
type Context struct {
	Env      map[string]string
	OS       string
	Arch     string
	Hostname string
	User     string
	Date     string // YYYY-MM-DD
}

// NewContextFromPlatform creates a Context from platform detection results
// and the process environment. now sets Date.
func NewContextFromPlatform(p *platform.Platform, now time.Time) *Context {
	env := make(map[string]string)

	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	return &Context{
		OS:       p.OS,
		Arch:     p.Arch,
		Hostname: p.Hostname,
		User:     p.User,
		Date:     now.Format(dateLayout),
		Env:      env,
	}
}
