package config

import (
	"net"
	neturl "net/url"
	"strconv"
	"strings"
)

// URLValue returns the configured redis URL, or one assembled from host,
// port, credentials and db.
func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	host := orDefault(strings.TrimSpace(c.Host), defaultRedisHost)
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	db := c.DB
	if db < 0 {
		db = defaultRedisDB
	}

	u := neturl.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(db),
		User:   userInfo(c.Username, c.Password),
	}
	if c.TLS {
		u.Scheme = "rediss"
	}
	return u.String()
}

// RedactedURI is the Mongo URI with its password masked, for logs.
func (c MongoRuntimeConfig) RedactedURI() string {
	u, err := neturl.Parse(c.URI)
	if err != nil || u.User == nil {
		return c.URI
	}
	if _, ok := u.User.Password(); ok {
		u.User = neturl.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

func userInfo(username, password string) *neturl.Userinfo {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	switch {
	case password != "":
		return neturl.UserPassword(username, password)
	case username != "":
		return neturl.User(username)
	default:
		return nil
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
