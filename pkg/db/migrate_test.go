package db

import (
	"io"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/drsite/drsite-web/migrations"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	up, err := fs.ReadFile(migrations.FS, "000001_create_form_submissions.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS form_submissions")

	down, err := fs.ReadFile(migrations.FS, "000001_create_form_submissions.down.sql")
	require.NoError(t, err)
	assert.Contains(t, string(down), "DROP TABLE IF EXISTS form_submissions")
}

func TestMigrations_SourceParses(t *testing.T) {
	source, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestMigrations_EveryUpHasDown(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		if strings.HasSuffix(name, ".up.sql") {
			assert.True(t, names[strings.TrimSuffix(name, ".up.sql")+".down.sql"], "missing down migration for %s", name)
		}
	}
}

func TestConfigureTLS(t *testing.T) {
	cfg, err := configureTLS("postgres://localhost/drsite", "/does/not/exist")
	require.NoError(t, err)
	assert.Nil(t, cfg, "no TLS without sslmode")

	cfg, err = configureTLS("postgres://db/drsite?sslmode=require", "")
	require.NoError(t, err)
	assert.Nil(t, cfg, "no CA bundle configured")

	_, err = configureTLS("postgres://db/drsite?sslmode=verify-full", "/does/not/exist")
	assert.Error(t, err)
}

// recordingDriver is an in-memory migrate driver that keeps the applied scripts.
type recordingDriver struct {
	mu      sync.Mutex
	version int
	dirty   bool
	scripts []string
}

var _ database.Driver = (*recordingDriver)(nil)

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{version: database.NilVersion}
}

func (d *recordingDriver) Open(string) (database.Driver, error) { return d, nil }
func (d *recordingDriver) Close() error                          { return nil }
func (d *recordingDriver) Lock() error                           { return nil }
func (d *recordingDriver) Unlock() error                         { return nil }
func (d *recordingDriver) Drop() error                           { return nil }

func (d *recordingDriver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts = append(d.scripts, string(body))
	return nil
}

func (d *recordingDriver) SetVersion(version int, dirty bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.version = version
	d.dirty = dirty
	return nil
}

func (d *recordingDriver) Version() (int, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version, d.dirty, nil
}

func TestNewMigrator_AppliesEmbeddedMigrations(t *testing.T) {
	driver := newRecordingDriver()

	m, err := newMigrator(migrations.FS, driver)
	require.NoError(t, err)

	require.NoError(t, m.Up())

	version, dirty, err := driver.Version()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, dirty)
	require.Len(t, driver.scripts, 1)
	assert.Contains(t, driver.scripts[0], "form_submissions")
}
