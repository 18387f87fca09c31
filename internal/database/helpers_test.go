package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"disputeshield_back_end/internal/config"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const testKeyspace = "disputeshield_test"

// setupTestSession ouvre une session sur un keyspace de test à un seul réplica.
// Les tests sont ignorés sans SCYLLA_TEST_HOSTS (ex. "127.0.0.1").
func setupTestSession(t *testing.T) *gocql.Session {
	t.Helper()

	hosts := os.Getenv("SCYLLA_TEST_HOSTS")
	if hosts == "" {
		t.Skip("SCYLLA_TEST_HOSTS non défini")
	}
	cfg := config.ScyllaConfig{
		Hosts:    strings.Split(hosts, ","),
		Timeout:  10 * time.Second,
		NumConns: 1,
	}

	admin, err := createScyllaCluster(cfg).CreateSession()
	if err != nil {
		t.Fatalf("failed to connect to test cluster: %v", err)
	}
	defer admin.Close()

	runSchema(t, admin)

	cfg.Keyspace = testKeyspace
	session, err := ConnectScylla(cfg)
	if err != nil {
		t.Fatalf("failed to open test keyspace: %v", err)
	}
	t.Cleanup(session.Close)
	return session
}

// runSchema rejoue scripts/scylladb_init.cql sur le keyspace de test
func runSchema(t *testing.T, session *gocql.Session) {
	t.Helper()

	err := session.Query(`CREATE KEYSPACE IF NOT EXISTS ` + testKeyspace +
		` WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`).Exec()
	if err != nil {
		t.Fatalf("failed to create test keyspace: %v", err)
	}

	schemaPath := filepath.Join("..", "..", "scripts", "scylladb_init.cql")
	raw, err := os.ReadFile(schemaPath) // #nosec G304
	if err != nil {
		t.Fatalf("failed to read schema file: %v", err)
	}

	for _, stmt := range splitStatements(string(raw)) {
		if strings.HasPrefix(strings.ToUpper(stmt), "CREATE KEYSPACE") {
			continue
		}
		stmt = strings.ReplaceAll(stmt, "disputeshield.", testKeyspace+".")
		if err := session.Query(stmt).Exec(); err != nil {
			t.Fatalf("failed to apply %q: %v", stmt, err)
		}
	}
}

func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// newUserID isole chaque test sans avoir à vider les tables
func newUserID() string {
	return "user-" + uuid.NewString()
}
