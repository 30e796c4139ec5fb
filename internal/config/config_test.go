package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, 8001, c.Port)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "SESSION", c.Session.Cookie)
	assert.Equal(t, 2, c.Game.MinPlayers)
	assert.Equal(t, 8, c.Game.MaxPlayers)
	assert.Equal(t, 3, c.Game.CandidateWords)
	assert.Equal(t, time.Second, c.Game.Tick)
	assert.Equal(t, 20*time.Second, c.Game.NewRound)
	assert.Equal(t, 50, c.Game.UnguessedPenalty)
	assert.Equal(t, time.Duration(0), c.Room.IdleTTL)
	assert.Equal(t, "0.0.0.0:8001", c.Addr())
}

func TestLoad_FromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "host": "127.0.0.1",
  "port": 9000,
  "log_level": "debug",
  "game": {"max_players": 6, "game_running": "45s"},
  "room": {"idle_ttl": "10m"}
}`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.Addr())
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 6, c.Game.MaxPlayers)
	assert.Equal(t, 45*time.Second, c.Game.GameRunning)
	assert.Equal(t, 10*time.Minute, c.Room.IdleTTL)
	// 未出现在文件中的键保留默认值
	assert.Equal(t, 10*time.Second, c.Game.ShowWord)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9100
logging:
  format: json
game:
  word_list: words.yaml
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, c.Port)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, "words.yaml", c.Game.WordList)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DRAWING_PORT", "7000")
	t.Setenv("DRAWING_GAME_MAX_PLAYERS", "4")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, c.Port)
	assert.Equal(t, 4, c.Game.MaxPlayers)
}

func TestLoad_InvalidFileContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": `), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	c.Port = 0
	c.LogLevel = "trace"
	c.Game.MinPlayers = 1
	c.Game.Tick = 0

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be 1-65535")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "game.min_players")
	assert.Contains(t, err.Error(), "game.tick")
}

func TestInitConfig_PanicsOnInvalid(t *testing.T) {
	t.Setenv("DRAWING_LOG_LEVEL", "loud")

	assert.Panics(t, func() {
		InitConfig("")
	})
}
