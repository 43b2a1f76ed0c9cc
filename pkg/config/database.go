package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// keyspaceName matches unquoted CQL identifiers.
var keyspaceName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,47}$`)

// Supported values of DatabaseConfig.Driver.
const (
	DriverCassandra = "cassandra"
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
)

type DatabaseConfig struct {
	Driver    string          `koanf:"driver"`
	Timeout   time.Duration   `koanf:"timeout"`
	Cassandra CassandraConfig `koanf:"cassandra"`
	Postgres  PostgresConfig  `koanf:"postgres"`
}

type CassandraConfig struct {
	Hosts        []string `koanf:"hosts"`
	Keyspace     string   `koanf:"keyspace"`
	Consistency  string   `koanf:"consistency"`
	Replication  int      `koanf:"replication"`
	Username     string   `koanf:"username"`
	Password     string   `koanf:"password"`
	CreateSchema bool     `koanf:"createSchema"`
}

type PostgresConfig struct {
	URL string `koanf:"url"`
}

// String returns a string representation of the database configuration.
func (c *DatabaseConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Database ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	switch c.Driver {
	case DriverCassandra:
		b.WriteString(fmt.Sprintf("  cassandra.hosts: %s\n", strings.Join(c.Cassandra.Hosts, ",")))
		b.WriteString(fmt.Sprintf("  cassandra.keyspace: %s\n", c.Cassandra.Keyspace))
		b.WriteString(fmt.Sprintf("  cassandra.consistency: %s\n", c.Cassandra.Consistency))
		b.WriteString(fmt.Sprintf("  cassandra.replication: %d\n", c.Cassandra.Replication))
		b.WriteString(fmt.Sprintf("  cassandra.username: %s\n", maskSecret(c.Cassandra.Username)))
		b.WriteString(fmt.Sprintf("  cassandra.createSchema: %t\n", c.Cassandra.CreateSchema))
	case DriverPostgres:
		b.WriteString(fmt.Sprintf("  postgres.url: %s\n", MaskURL(c.Postgres.URL)))
	}
	return b.String()
}

func (c *DatabaseConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("database timeout is not configured")
	}
	switch c.Driver {
	case DriverCassandra:
		return c.Cassandra.Validate()
	case DriverPostgres:
		return c.Postgres.Validate()
	case DriverMemory:
		return nil
	case "":
		return fmt.Errorf("database driver is not configured")
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
}

func (c *CassandraConfig) Validate() error {
	c.Hosts = splitHosts(c.Hosts)
	if len(c.Hosts) == 0 {
		return fmt.Errorf("cassandra hosts are not configured")
	}
	if c.Keyspace == "" {
		return fmt.Errorf("cassandra keyspace is not configured")
	}
	if !keyspaceName.MatchString(c.Keyspace) {
		return fmt.Errorf("invalid cassandra keyspace name: %s", c.Keyspace)
	}
	if c.CreateSchema && c.Replication <= 0 {
		return fmt.Errorf("cassandra replication factor must be greater than 0: %d", c.Replication)
	}
	return nil
}

func (c *PostgresConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://': %s", MaskURL(c.URL))
	}
	return nil
}

// splitHosts flattens comma separated entries, as they arrive from environment variables.
func splitHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		for _, part := range strings.Split(h, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// MaskURL hides the credentials part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}
