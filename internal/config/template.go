package config

import (
	"fmt"
	"strings"
)

// EnvVar documents one environment variable read by Load.
type EnvVar struct {
	Name     string
	Default  string
	Required bool
	Help     string
}

// Vars lists every variable the server reads, grouped the way the .env
// template presents them.
var Vars = []EnvVar{
	{Name: "PORT", Default: "5000", Help: "HTTP listen port"},
	{Name: "CORS_ORIGINS", Default: "http://localhost:3000,http://localhost:5173", Help: "comma separated allowed origins"},
	{Name: "MAX_UPLOAD_BYTES", Default: "10485760", Help: "upload size limit"},
	{Name: "LOG_FORMAT", Default: "text", Help: "text or json"},
	{Name: "LOG_LEVEL", Default: "debug", Help: "debug, info, warn or error"},

	{Name: "JWT_SECRET", Required: true, Help: "HMAC key for admin tokens"},
	{Name: "JWT_TTL", Default: "168h", Help: "admin token lifetime"},

	{Name: "STORE_BACKEND", Default: StoreBackendSurreal, Help: "surreal or memory"},
	{Name: "SURREAL_URL", Required: true, Help: "e.g. ws://localhost:8000/rpc"},
	{Name: "SURREAL_NS", Required: true},
	{Name: "SURREAL_DB", Required: true},
	{Name: "SURREAL_USER"},
	{Name: "SURREAL_PASS"},
	{Name: "DB_QUERY_TIMEOUT", Default: "5s"},
	{Name: "DB_EXECUTE_TIMEOUT", Default: "10s"},

	{Name: "ASSET_BACKEND", Default: AssetBackendLocal, Help: "gcs or local"},
	{Name: "GCS_BUCKET", Help: "required when ASSET_BACKEND=gcs"},
	{Name: "GCS_CDN_DOMAIN", Help: "optional host serving the bucket"},
	{Name: "STORAGE_EMULATOR_HOST", Help: "fake-gcs-server address for development"},
	{Name: "ASSET_LOCAL_DIR", Default: "uploads"},
	{Name: "ASSET_PUBLIC_BASE_URL", Default: "http://localhost:5000/uploads"},

	{Name: "PUBSUB_TRACING_ENABLED", Default: "false"},
	{Name: "PUBSUB_TRACING_SERVICE_NAME", Default: "folio"},
	{Name: "PUBSUB_TRACING_ZIPKIN_URL", Default: "http://localhost:9411/api/v2/spans"},
}

// RequiredVars returns the names of the variables without which Load fails
// for the default backends.
func RequiredVars() []string {
	var names []string
	for _, v := range Vars {
		if v.Required {
			names = append(names, v.Name)
		}
	}
	return names
}

// EnvTemplate renders Vars as a .env file. Required variables are left
// empty; the rest carry their defaults.
func EnvTemplate() string {
	var b strings.Builder
	b.WriteString("# folio configuration\n")
	for i, v := range Vars {
		if i > 0 && groupStart(v.Name) {
			b.WriteString("\n")
		}
		if v.Help != "" || v.Required {
			note := v.Help
			if v.Required {
				note = strings.TrimSpace("(required) " + note)
			}
			fmt.Fprintf(&b, "# %s\n", note)
		}
		fmt.Fprintf(&b, "%s=%s\n", v.Name, v.Default)
	}
	return b.String()
}

func groupStart(name string) bool {
	switch name {
	case "JWT_SECRET", "STORE_BACKEND", "ASSET_BACKEND", "PUBSUB_TRACING_ENABLED":
		return true
	}
	return false
}
