package version

import "fmt"

// Build-time variables. Override via -ldflags.
var (
	Version   = "dev"
	Commit    = "dev"
	BuildDate = "dev"
)

// product names this build in the User-Agent header and the CLI banner.
const product = "wb-finances-mcp"

// Info describes build/version metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Get returns version info, defaulting empty fields to "dev".
func Get() Info {
	return Info{
		Version:   defaultOr(Version, "dev"),
		Commit:    defaultOr(Commit, "dev"),
		BuildDate: defaultOr(BuildDate, "dev"),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", product, i.Version, i.Commit, i.BuildDate)
}

// UserAgent identifies outbound API calls.
func UserAgent() string {
	return product + "/" + Get().Version
}

func defaultOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
