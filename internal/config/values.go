package config

import "time"

const (
	authSecretVar         = "AUTH_SECRET"
	adminPasswordVar      = "ADMIN_PASSWORD"
	googleClientIDVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretVar = "GOOGLE_CLIENT_SECRET"
	allowedAdminEmailsVar = "ALLOWED_ADMIN_EMAILS"
)

// Values holds the raw environment. Tests build it directly; production code
// goes through Load.
type Values struct {
	Port       string `env:"PORT"         envDefault:"8080"`
	AppName    string `env:"APP_NAME"     envDefault:"Wedding Site"`
	Env        string `env:"ENV"          envDefault:"DEV"`
	LogLevel   string `env:"LOG_LEVEL"    envDefault:"info"`
	SiteOrigin string `env:"SITE_ORIGIN"`
	AdminPath  string `env:"ADMIN_PATH"   envDefault:"/admin"`
	TrustProxy bool   `env:"TRUST_PROXY"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	AdminPassword       string        `env:"ADMIN_PASSWORD"`
	AdminPasswordBcrypt string        `env:"ADMIN_PASSWORD_BCRYPT"`
	AuthSecret          string        `env:"AUTH_SECRET"`
	TokenTTL            time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`

	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleAuthURL      string        `env:"GOOGLE_AUTH_URL"      envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	GoogleTokenURL     string        `env:"GOOGLE_TOKEN_URL"     envDefault:"https://oauth2.googleapis.com/token"`
	GoogleUserInfoURL  string        `env:"GOOGLE_USERINFO_URL"  envDefault:"https://www.googleapis.com/oauth2/v3/userinfo"`
	AllowedAdminEmails []string      `env:"ALLOWED_ADMIN_EMAILS" envSeparator:","`
	UpstreamTimeout    time.Duration `env:"OAUTH_UPSTREAM_TIMEOUT" envDefault:"5s"`

	DataFolder      string `env:"FOLDER"            envDefault:"./data"`
	ImagesPublicURL string `env:"IMAGES_PUBLIC_URL"`
	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES"  envDefault:"10485760"`
}
