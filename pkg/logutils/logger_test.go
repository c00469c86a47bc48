package logutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Path(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "explicit file", opts: Options{File: "/tmp/a.log", DefaultFile: "/tmp/b.log"}, want: "/tmp/a.log"},
		{name: "default file", opts: Options{DefaultFile: "/tmp/b.log"}, want: "/tmp/b.log"},
		{name: "stdout overrides default", opts: Options{File: Stdout, DefaultFile: "/tmp/b.log"}, want: ""},
		{name: "nothing set", opts: Options{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.path())
		})
	}
}

func TestNew_Level(t *testing.T) {
	logger, closer, err := New(Options{Level: "warn", File: Stdout})
	require.NoError(t, err)
	defer closer()
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger, closer, err = New(Options{File: Stdout})
	require.NoError(t, err)
	defer closer()
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New(Options{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
	closer()
}

func TestNew_AppendsToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "remindbot.log")

	for _, msg := range []string{"first run", "second run"} {
		logger, closer, err := New(Options{Level: "info", DefaultFile: file})
		require.NoError(t, err)
		logger.Info().Msg(msg)
		closer()
	}

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"message":"first run"`)
	assert.Contains(t, lines[1], `"message":"second run"`)
	assert.Contains(t, lines[0], `"time":`)
}
