package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		base    Config
		want    Config
		wantErr bool
	}{
		{
			name:  "AllKeys",
			input: "daemonise true\ndefaults ze/zir\nfile .pronouns.txt\nport 7310\nuser nobody\n",
			base:  Default(),
			want: Config{
				Daemonise: true,
				Defaults:  "ze/zir\n",
				File:      ".pronouns.txt",
				Port:      7310,
				User:      "nobody",
			},
		},
		{
			name:  "AbsentKeysKeepBaseValues",
			input: "port 8000\n",
			base:  Config{Defaults: "xe/xem\n", File: ".p", Port: 731, User: "svc"},
			want:  Config{Defaults: "xe/xem\n", File: ".p", Port: 8000, User: "svc"},
		},
		{
			name:  "CommentsAndBlankLines",
			input: "# a comment\n\n   \nuser nobody\n  # indented comment\n",
			base:  Default(),
			want: Config{
				Defaults: "not specified\n",
				File:     ".pronouns",
				Port:     731,
				User:     "nobody",
			},
		},
		{
			name:  "UnknownKeysIgnored",
			input: "colour mauve\nuser nobody\n",
			base:  Default(),
			want: Config{
				Defaults: "not specified\n",
				File:     ".pronouns",
				Port:     731,
				User:     "nobody",
			},
		},
		{
			name:  "DefaultsValueKeepsSpaces",
			input: "defaults ask me directly\n",
			base:  Default(),
			want: Config{
				Defaults: "ask me directly\n",
				File:     ".pronouns",
				Port:     731,
				User:     "_pronound",
			},
		},
		{
			name:  "DaemoniseAcceptsOne",
			input: "daemonise 1\n",
			base:  Default(),
			want: Config{
				Daemonise: true,
				Defaults:  "not specified\n",
				File:      ".pronouns",
				Port:      731,
				User:      "_pronound",
			},
		},
		{
			name:  "DaemoniseAnythingElseIsFalse",
			input: "daemonise yes\n",
			base: Config{
				Daemonise: true,
				Defaults:  "not specified\n",
				File:      ".pronouns",
				Port:      731,
				User:      "_pronound",
			},
			want: Config{
				Defaults: "not specified\n",
				File:     ".pronouns",
				Port:     731,
				User:     "_pronound",
			},
		},
		{
			name:  "SurroundingWhitespaceStripped",
			input: "  port 8000\t\r\n",
			base:  Default(),
			want: Config{
				Defaults: "not specified\n",
				File:     ".pronouns",
				Port:     8000,
				User:     "_pronound",
			},
		},
		{
			name:    "NonNumericPort",
			input:   "port seven\n",
			base:    Default(),
			wantErr: true,
		},
		{
			name:    "PortZero",
			input:   "port 0\n",
			base:    Default(),
			wantErr: true,
		},
		{
			name:    "PortOutOfRange",
			input:   "port 65536\n",
			base:    Default(),
			wantErr: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(c.input), c.base)
			if c.wantErr {
				if err == nil {
					t.Fatalf("Parse succeeded, want error")
				}
				if diff := cmp.Diff(c.base, got); diff != "" {
					t.Errorf("Failed parse modified config (-want, +got):\n%v", diff)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Wrong config (-want, +got):\n%v", diff)
			}
		})
	}
}

func TestDefaultsAlwaysEndInNewline(t *testing.T) {
	cfg, err := Parse(strings.NewReader("defaults they/them\n"), Default())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !strings.HasSuffix(cfg.Defaults, "\n") || strings.HasSuffix(cfg.Defaults, "\n\n") {
		t.Errorf("Defaults %q doesn't end in exactly one newline", cfg.Defaults)
	}
	if !strings.HasSuffix(Default().Defaults, "\n") {
		t.Errorf("Built-in default %q doesn't end in a newline", Default().Defaults)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pronound.conf")
	if err := os.WriteFile(path, []byte("defaults fae/faer\nuser nobody\n"), 0644); err != nil {
		t.Fatalf("Error writing config: %v", err)
	}
	got, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := Config{
		Defaults: "fae/faer\n",
		File:     ".pronouns",
		Port:     731,
		User:     "nobody",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wrong config (-want, +got):\n%v", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	base := Default()
	got, err := Load(filepath.Join(t.TempDir(), "nope.conf"), base)
	if err == nil {
		t.Fatal("Load succeeded, want error")
	}
	if diff := cmp.Diff(base, got); diff != "" {
		t.Errorf("Failed load modified config (-want, +got):\n%v", diff)
	}
}

func TestPath(t *testing.T) {
	cases := []struct {
		name     string
		env      string
		explicit string
		want     string
	}{
		{name: "EnvWins", env: "/env/pronound.conf", explicit: "/flag/pronound.conf", want: "/env/pronound.conf"},
		{name: "ExplicitBeatsDefault", explicit: "/flag/pronound.conf", want: "/flag/pronound.conf"},
		{name: "BuiltInDefault", want: DefaultPath},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Setenv(EnvVar, c.env)
			if got := Path(c.explicit); got != c.want {
				t.Errorf("Wrong path: want %v got %v", c.want, got)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := Config{Port: 731}
	if got := cfg.Addr(); got != ":731" {
		t.Errorf("Wrong addr: want %v got %v", ":731", got)
	}
}
