package analyzers_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQL(t *testing.T) {
	t.Parallel()

	runCases(t, "sql", []analyzerCase{
		{name: "select star", code: "SELECT * FROM users;", want: []string{"SQL001"}},
		{name: "delete without where", code: "DELETE FROM users;", want: []string{"SQL003"}},
		{name: "update with where", code: "UPDATE users SET a = 1 WHERE id = 2;", absent: []string{"SQL003"}},
		{name: "drop", code: "DROP TABLE users;", want: []string{"SQL004"}, fixed: "DROP TABLE IF EXISTS users;"},
		{name: "drop guarded", code: "DROP TABLE IF EXISTS users;", absent: []string{"SQL004"}},
		{name: "create table", code: "CREATE TABLE t (id INT);", want: []string{"SQL005"}},
		{name: "grant all", code: "GRANT ALL ON db.* TO bob;", want: []string{"SQL007"}},
		{name: "password", code: "CREATE USER bob PASSWORD 'secret';", want: []string{"SQL008"}},
		{name: "comment ignored", code: "-- SELECT * FROM users", absent: []string{"SQL001"}},
	})
}

func TestSQL_Context(t *testing.T) {
	t.Parallel()

	res := analyze(t, "sql", "CREATE TABLE IF NOT EXISTS orders (id INT);\nSELECT id FROM orders JOIN users ON 1 = 1;")
	assert.Equal(t, []string{"orders"}, res.Context["tables_created"])
	assert.Equal(t, []string{"orders", "users"}, res.Context["tables_referenced"])
	assert.Equal(t, []string{"users"}, res.Context["potentially_missing"])
}

func TestJSON(t *testing.T) {
	t.Parallel()

	runCases(t, "json", []analyzerCase{
		{name: "valid", code: "[1, 2]", absent: []string{"JSON001"}},
		{name: "python literals", code: `{"a": True, "b": "None"}`, want: []string{"JSON004"}, absent: []string{"JSON001"}, fixed: `{"a": true, "b": "None"}`},
		{name: "trailing comma", code: "{\n  \"a\": 1,\n}", want: []string{"JSON005"}, absent: []string{"JSON001"}, fixed: "{\n  \"a\": 1\n}"},
		{name: "duplicate keys", code: `{"a": 1, "a": 2}`, want: []string{"JSON006"}},
		{name: "nested duplicates only per object", code: `{"a": {"x": 1}, "b": {"x": 2}}`, absent: []string{"JSON006"}},
		{name: "syntax error", code: `{"a": }`, want: []string{"JSON001"}},
		{name: "tabs and trailing whitespace", code: "{\n\t\"a\": 1 \n}", want: []string{"JSON002", "JSON003"}, fixed: "{\n  \"a\": 1\n}"},
	})
}

func TestJSON_ErrorPosition(t *testing.T) {
	t.Parallel()

	res := analyze(t, "json", "{\n  \"a\": 1\n  \"b\": 2\n}")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "JSON001", res.Errors[0].Code)
	assert.Equal(t, 3, res.Errors[0].Line)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	runCases(t, "yaml", []analyzerCase{
		{name: "clean", code: "name: demo\nitems:\n  - a\n  - b", absent: []string{"YAML009", "YAML011"}},
		{name: "booleanish", code: "enabled: yes", want: []string{"YAML004"}, fixed: `enabled: "yes"`},
		{name: "real boolean untouched", code: "enabled: true", absent: []string{"YAML004"}},
		{name: "colon in value", code: "title: a: b", want: []string{"YAML005"}, absent: []string{"YAML011"}, fixed: `title: "a: b"`},
		{name: "tab", code: "key:\tvalue", want: []string{"YAML002"}, fixed: "key:  value"},
		{name: "trailing whitespace", code: "a: 1 ", want: []string{"YAML003"}, fixed: "a: 1"},
		{name: "long line", code: "a: " + strings.Repeat("x", 130), want: []string{"YAML006"}},
		{name: "duplicate key", code: "a: 1\na: 2", want: []string{"YAML007"}},
		{name: "same key under other parents", code: "x:\n  a: 1\ny:\n  a: 2", absent: []string{"YAML007"}},
		{name: "secret", code: "password: hunter2", want: []string{"YAML008"}},
		{name: "secret from env", code: "password: ${DB_PASSWORD}", absent: []string{"YAML008"}},
		{name: "empty value", code: "empty:\nnext: 1", want: []string{"YAML009"}},
		{name: "parent key is not empty", code: "parent:\n  child: 1", absent: []string{"YAML009"}},
		{name: "unused anchor", code: "base: &b 1\nother: 2", want: []string{"YAML010"}},
		{name: "used anchor", code: "base: &b 1\nother: *b", absent: []string{"YAML010"}},
		{name: "parse error", code: "a: [1, 2", want: []string{"YAML011"}},
	})
}

func TestDockerCompose(t *testing.T) {
	t.Parallel()

	runCases(t, "docker-compose", []analyzerCase{
		{
			name:  "untagged and no restart",
			code:  "services:\n  web:\n    image: nginx",
			want:  []string{"COMPOSE001", "COMPOSE003"},
			fixed: "services:\n  web:\n    restart: unless-stopped\n    image: nginx",
		},
		{
			name: "hardening",
			code: "services:\n  web:\n    image: nginx:latest\n    restart: always\n    privileged: true\n" +
				"    ports:\n      - \"8080:80\"\n      - \"127.0.0.1:9090:90\"\n    environment:\n      DB_PASSWORD: hunter2\n      DB_USER: app",
			want:   []string{"COMPOSE002", "COMPOSE004", "COMPOSE005", "COMPOSE006"},
			absent: []string{"COMPOSE001", "COMPOSE003"},
		},
		{
			name:   "environment list",
			code:   "services:\n  db:\n    image: postgres:16\n    restart: always\n    environment:\n      - POSTGRES_PASSWORD=hunter2",
			want:   []string{"COMPOSE006"},
			absent: []string{"COMPOSE001", "COMPOSE002"},
		},
	})
}

func TestDockerCompose_Context(t *testing.T) {
	t.Parallel()

	res := analyze(t, "docker-compose", "services:\n  web:\n    image: a:1\n    restart: always\n  db:\n    image: b:2\n    restart: always")
	assert.Equal(t, []string{"db", "web"}, res.Context["services"])
	assert.Empty(t, res.Warnings)
}

func TestKubernetes(t *testing.T) {
	t.Parallel()

	pod := strings.Join([]string{
		"apiVersion: v1",
		"kind: Pod",
		"metadata:",
		"  name: demo",
		"spec:",
		"  hostNetwork: true",
		"  containers:",
		"    - name: app",
		"      image: nginx:latest",
		"      securityContext:",
		"        privileged: true",
	}, "\n")

	deployment := strings.Join([]string{
		"apiVersion: apps/v1",
		"kind: Deployment",
		"metadata:",
		"  name: web",
		"spec:",
		"  template:",
		"    spec:",
		"      securityContext:",
		"        runAsNonRoot: true",
		"      containers:",
		"        - name: app",
		"          image: nginx:1.25",
		"          resources:",
		"            limits:",
		"              cpu: \"1\"",
	}, "\n")

	runCases(t, "kubernetes", []analyzerCase{
		{name: "pod", code: pod, want: []string{"K8S001", "K8S002", "K8S003", "K8S004", "K8S005"}},
		{name: "hardened deployment", code: deployment, absent: []string{"K8S001", "K8S002", "K8S003", "K8S004", "K8S005"}},
	})

	res := analyze(t, "kubernetes", pod+"\n---\n"+deployment)
	assert.Equal(t, []string{"Deployment", "Pod"}, res.Context["kinds"])
	assert.Equal(t, []string{"demo", "web"}, res.Context["names"])
}

func TestTOML(t *testing.T) {
	t.Parallel()

	runCases(t, "toml", []analyzerCase{
		{name: "valid", code: "[server]\nport = 8080", absent: []string{"TOML001"}},
		{name: "parse error", code: "[server\nport = 1", want: []string{"TOML001"}},
		{name: "spaced key", code: "my key = 1", want: []string{"TOML004"}},
		{name: "trailing whitespace", code: "a = 1 ", want: []string{"TOML003"}, fixed: "a = 1"},
		{name: "tabs", code: "[a]\n\tb = 1", want: []string{"TOML002"}, fixed: "[a]\n  b = 1"},
	})
}

func TestINI(t *testing.T) {
	t.Parallel()

	runCases(t, "ini", []analyzerCase{
		{
			name:  "missing section",
			code:  "key = value\n[main]\nx = 1",
			want:  []string{"INI001"},
			fixed: "[DEFAULT]\nkey = value\n[main]\nx = 1",
		},
		{name: "malformed", code: "[main]\njunk line", want: []string{"INI004"}},
		{name: "continuation", code: "[main]\nkey = a\n  continued", absent: []string{"INI001", "INI004"}},
		{name: "comments", code: "; note\n[main]\n# other\nk: v", absent: []string{"INI001", "INI004"}},
	})
}
