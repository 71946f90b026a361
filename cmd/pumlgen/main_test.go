package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const garden = `@startuml
class Pot {
  - size : int
}
class Flower {
  - name : String
  color
}
Flower "*" --> "1" Pot
@enduml
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func diagram(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "garden.puml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerate_Positional(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	_, err := run(t, "generate", diagram(t, dir, garden), out, "com.example.garden")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "src/main/java/com/example/garden/entities/Flower.java"))
	assert.FileExists(t, filepath.Join(out, "pom.xml"))
}

func TestGenerate_Flags(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	_, err := run(t, "generate", diagram(t, dir, garden), "-o", out, "-p", "com.example.garden",
		"--target", "go", "--target", "sql", "--dialect", "sqlite")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "garden", "flower.go"))
	b, err := os.ReadFile(filepath.Join(out, "schema.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "CREATE TABLE `pots`")
	assert.NoFileExists(t, filepath.Join(out, "pom.xml"))
}

func TestGenerate_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	cfg := filepath.Join(dir, "pumlgen.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("target: "+out+"\ntargets: [graphql]\n"), 0o644))
	_, err := run(t, "generate", diagram(t, dir, garden), "--config", cfg)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "schema.graphql"))
}

func TestGenerate_Env(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "env-out")
	t.Setenv("PUMLGEN_TARGET", out)
	t.Setenv("PUMLGEN_TARGETS", "sql")
	_, err := run(t, "generate", diagram(t, dir, garden))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "schema.sql"))
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", diagram(t, dir, "class A\nA --> B\n"), filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = run(t, "generate", diagram(t, dir, garden), "--target", "cobol")
	require.Error(t, err)

	_, err = run(t, "generate")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := diagram(t, dir, garden)
	bad := filepath.Join(dir, "bad.puml")
	require.NoError(t, os.WriteFile(bad, []byte("class A {\n"), 0o644))

	out, err := run(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (2 classes, 1 relationships, 1 warnings)")
	assert.Contains(t, out, "untyped-attribute")

	out, err = run(t, "check", good, bad)
	require.EqualError(t, err, "1 of 2 diagrams failed")
	assert.Contains(t, out, bad+": error:")
}

func TestDDL(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "ddl", diagram(t, dir, garden), "--dialect", "mysql")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE `flowers`")

	file := filepath.Join(dir, "schema.sql")
	_, err = run(t, "ddl", diagram(t, dir, garden), "-o", file)
	require.NoError(t, err)
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `CREATE TABLE "pots"`)
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "garden.db") + "?_pragma=foreign_keys(1)"
	path := diagram(t, dir, garden)

	_, err := run(t, "migrate", path, "--dialect", "sqlite")
	require.ErrorContains(t, err, "missing --dsn")

	out, err := run(t, "migrate", path, "--dialect", "sqlite", "--dsn", dsn, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE `pots`")

	t.Setenv("PUMLGEN_DSN", dsn)
	out, err = run(t, "migrate", path, "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE `flowers`")

	out, err = run(t, "migrate", path, "--dialect", "sqlite")
	require.NoError(t, err)
	assert.NotContains(t, out, "CREATE TABLE `flowers`", "tables are created once")
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	path := diagram(t, dir, garden)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := newRootCmd()
	cmd.SetArgs([]string{"watch", path, "-o", out, "--target", "sql", "--dialect", "sqlite"})
	cmd.SetErr(&bytes.Buffer{})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	schema := filepath.Join(out, "schema.sql")
	require.Eventually(t, func() bool {
		_, err := os.Stat(schema)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(garden, "class Pot {", "class Vase\nclass Pot {", 1)), 0o644))
	require.Eventually(t, func() bool {
		b, err := os.ReadFile(schema)
		return err == nil && strings.Contains(string(b), "`vases`")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
