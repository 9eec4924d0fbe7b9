package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Username string `json:"username"`
	Quantity int    `json:"quantity"`
	Bid      *bool  `json:"bid"`
	Delay    *int   `json:"delay"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "dir/bidsniper.local.json5", localName("dir/bidsniper.json5"))
	require.Equal(t, "config.local", localName("config"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bidsniper.json5")

	_, err := ReadConfig[testConfig](path)
	require.ErrorIs(t, err, os.ErrNotExist)

	write(t, path, `{
	// shared settings
	"username": "someone",
	"quantity": 3,
	"bid": true,
}`)
	write(t, filepath.Join(dir, "bidsniper.local.json5"), `{"bid": false, "delay": 0}`)

	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "someone", config.Username)
	require.Equal(t, 3, config.Quantity)
	require.NotNil(t, config.Bid)
	require.False(t, *config.Bid)
	require.NotNil(t, config.Delay)
	require.Zero(t, *config.Delay)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "bidsniper.local.json5"), `{"username": "local"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "bidsniper.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", config.Username)
}

func TestReadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bidsniper.json5")
	write(t, path, `{"quantity": }`)

	_, err := ReadConfig[testConfig](path)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
	require.ErrorContains(t, err, path)
}

func TestReadLayers(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "home.json5")
	batch := filepath.Join(dir, "batch.json5")
	missing := filepath.Join(dir, "missing.json5")
	write(t, home, `{"username": "someone", "quantity": 4, "delay": 5}`)
	write(t, batch, `{"quantity": 2, "bid": false}`)

	yes := true
	config := testConfig{Quantity: 1, Bid: &yes}
	read, err := ReadLayers(&config, home, missing, batch)
	require.NoError(t, err)
	require.Equal(t, []string{home, batch}, read)

	bid, delay := false, 5
	expected := testConfig{Username: "someone", Quantity: 2, Bid: &bid, Delay: &delay}
	if diff := cmp.Diff(expected, config); diff != "" {
		t.Fatal(diff)
	}
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	write(t, filepath.Join(root, "layered.json5"), `{"username": "found"}`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	config, err := ReadRecursively[testConfig]("layered.json5")
	require.NoError(t, err)
	require.Equal(t, "found", config.Username)

	_, err = ReadRecursively[testConfig]("nowhere-to-be-found.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
