package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("STARTUP_TEST_VAR", "hello")
	if got := getEnv("STARTUP_TEST_VAR", "fallback"); got != "hello" {
		t.Errorf("getEnv = %q, want %q", got, "hello")
	}
	if got := getEnv("STARTUP_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv unset = %q, want %q", got, "fallback")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"garbage", true, true},
		{"garbage", false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("STARTUP_TEST_BOOL")
			} else {
				t.Setenv("STARTUP_TEST_BOOL", tt.value)
			}
			if got := getEnvBool("STARTUP_TEST_BOOL", tt.fallback); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("STARTUP_TEST_INT", "42")
	if got := getEnvInt("STARTUP_TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	t.Setenv("STARTUP_TEST_INT", "not-a-number")
	if got := getEnvInt("STARTUP_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt invalid = %d, want fallback 7", got)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret(""); got != "(unset)" {
		t.Errorf("maskSecret(\"\") = %q", got)
	}
	if got := maskSecret("hunter2"); got != "********" {
		t.Errorf("maskSecret leaked value: %q", got)
	}
}

func TestEnsureDirectory(t *testing.T) {
	dir := t.TempDir()

	// Existing directory is accepted
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Errorf("ensureDirectory on existing dir: %v", err)
	}

	// Missing directory is created
	sub := filepath.Join(dir, "a", "b")
	if err := ensureDirectory(sub, "test"); err != nil {
		t.Errorf("ensureDirectory create: %v", err)
	}
	if info, err := os.Stat(sub); err != nil || !info.IsDir() {
		t.Errorf("directory was not created: %v", err)
	}

	// File in the way is rejected
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("expected error when path is a regular file")
	}
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()
	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess on temp dir: %v", err)
	}
	// No leftover test file
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file was not cleaned up")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEB_ROOT", filepath.Join(dir, "wwwroot"))
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	os.Unsetenv("PORT")
	os.Unsetenv("MASTER_PASSWORD")
	os.Unsetenv("FAVORITE_LIMIT")
	os.Unsetenv("THUMBNAIL_MAX_EDGE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MasterPassword != "LoveLetterMaster" {
		t.Errorf("MasterPassword = %q, want default", cfg.MasterPassword)
	}
	if cfg.FavoriteLimit != 6 {
		t.Errorf("FavoriteLimit = %d, want 6", cfg.FavoriteLimit)
	}
	if cfg.ThumbnailMaxEdge != 512 {
		t.Errorf("ThumbnailMaxEdge = %d, want 512", cfg.ThumbnailMaxEdge)
	}
	if cfg.DatabasePath != filepath.Join(cfg.DataDir, "loveletter.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.UploadsDir != filepath.Join(cfg.WebRoot, "uploads") {
		t.Errorf("UploadsDir = %q", cfg.UploadsDir)
	}

	// Directories were created
	if _, err := os.Stat(cfg.UploadsDir); err != nil {
		t.Errorf("uploads dir not created: %v", err)
	}
}

func TestLoadConfigEmptyMasterPasswordDisablesCheck(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEB_ROOT", filepath.Join(dir, "wwwroot"))
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))

	// Explicitly empty is not the same as unset: it turns the check off
	t.Setenv("MASTER_PASSWORD", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MasterPassword != "" {
		t.Errorf("MasterPassword = %q, want empty to disable the check", cfg.MasterPassword)
	}
}

func TestLoadConfigInvalidNumbers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEB_ROOT", filepath.Join(dir, "wwwroot"))
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("FAVORITE_LIMIT", "-3")
	t.Setenv("THUMBNAIL_MAX_EDGE", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FavoriteLimit != 6 {
		t.Errorf("FavoriteLimit = %d, want default 6 for invalid input", cfg.FavoriteLimit)
	}
	if cfg.ThumbnailMaxEdge != 512 {
		t.Errorf("ThumbnailMaxEdge = %d, want default 512 for invalid input", cfg.ThumbnailMaxEdge)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("OS/Arch should not be empty")
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/gallery", func(http.ResponseWriter, *http.Request) {}).Methods("GET")
	router.HandleFunc("/api/gallery", func(http.ResponseWriter, *http.Request) {}).Methods("POST")
	router.HandleFunc("/healthz", func(http.ResponseWriter, *http.Request) {}).Methods("GET")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	if len(routes) != 3 {
		t.Errorf("got %d routes, want 3", len(routes))
	}

	found := false
	for _, r := range routes {
		if r.Method == "POST" && r.Path == "/api/gallery" {
			found = true
		}
	}
	if !found {
		t.Error("POST /api/gallery route not found")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/gallery", "api/gallery"},
		{"/api/bucket-list/{id}", "api/bucket-list"},
		{"/healthz", "healthz"},
		{"/metrics", "metrics"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
