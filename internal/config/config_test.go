package config

import "testing"

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		debug   string
		tempDir string
		port    string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			want: Config{Debug: false, TempDir: "/tmp/", Port: 8585},
		},
		{
			name:  "debug true",
			debug: "true",
			want:  Config{Debug: true, TempDir: "/tmp/", Port: 8585},
		},
		{
			name:  "debug mixed case",
			debug: "TRUE",
			want:  Config{Debug: true, TempDir: "/tmp/", Port: 8585},
		},
		{
			name:  "debug other values are false",
			debug: "1",
			want:  Config{Debug: false, TempDir: "/tmp/", Port: 8585},
		},
		{
			name:    "custom temp dir",
			tempDir: "/var/spool/markitdown",
			want:    Config{Debug: false, TempDir: "/var/spool/markitdown", Port: 8585},
		},
		{
			name: "custom port",
			port: "9090",
			want: Config{Debug: false, TempDir: "/tmp/", Port: 9090},
		},
		{
			name:    "invalid port",
			port:    "not-a-port",
			wantErr: true,
		},
		{
			name:    "all set",
			debug:   "true",
			tempDir: "/data/tmp",
			port:    "8080",
			want:    Config{Debug: true, TempDir: "/data/tmp", Port: 8080},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDebug, tt.debug)
			t.Setenv(EnvTempDir, tt.tempDir)
			t.Setenv(EnvPort, tt.port)

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
