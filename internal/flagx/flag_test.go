package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestFilterArgsWithBools_DoesNotSwallowPositional(t *testing.T) {
	got := FilterArgsWithBools(
		[]string{"-l", "positional", "-d", "dsn", "-l=false"},
		[]string{"-l", "-d"},
		[]string{"-l"},
	)
	assert.Equal(t, []string{"-l", "-d", "dsn", "-l=false"}, got)
}

func TestConfigFilePath(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-a", ":1", "-config", "cfg.json"}
	assert.Equal(t, "cfg.json", ConfigFilePath())

	os.Args = []string{"bin", "-c=short.json"}
	assert.Equal(t, "short.json", ConfigFilePath())

	os.Args = []string{"bin", "-a", ":1"}
	assert.Equal(t, "", ConfigFilePath())
}
