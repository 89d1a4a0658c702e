package config

import (
	"sort"
	"strings"
)

type Cors struct {
	allowedOrigins AllowedOrigins
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

func newCors(v Values) Cors {
	origins := AllowedOrigins{}
	for _, o := range trimCSV(v.AllowedOrigins) {
		origins[strings.TrimRight(o, "/")] = nullValue{}
	}
	return Cors{allowedOrigins: origins}
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	return c.allowedOrigins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PUT, DELETE, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
