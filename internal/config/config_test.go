package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "BACKEND_URL", "BACKEND_TIMEOUT", "CHAT_IDLE_TTL", "ARK_API_KEY", "ARK_MODEL", "TRUSTED_PROXIES", "CHAT_SELF_URL"} {
		t.Setenv(key, "")
	}
	// t.Setenv cannot unset; these are read with LookupEnv, so set the
	// values the defaults would produce where empty would differ.
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "3000")
	t.Setenv("BACKEND_URL", "http://localhost:8080/")
	t.Setenv("BACKEND_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 3000 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.Backend.URL != "http://localhost:8080" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("unparseable duration should fall back to default, got %v", cfg.Backend.Timeout)
	}
	if cfg.Chat.RelayEnabled() {
		t.Error("relay should be disabled without key and model")
	}
	if cfg.Chat.SelfURL != "http://127.0.0.1:3000" {
		t.Errorf("self relay should default to loopback, got %q", cfg.Chat.SelfURL)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Errorf("empty TRUSTED_PROXIES should trust nobody, got %v", cfg.TrustedProxies)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development")
	}
}

func TestLoad_ProductionRequiresAbsoluteBackend(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("PORT", "3000")
	t.Setenv("BACKEND_URL", "/relative")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for relative BACKEND_URL in production")
	}
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "70000")
	t.Setenv("BACKEND_URL", "http://localhost:8080")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoad_RelayEnabled(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "3000")
	t.Setenv("BACKEND_URL", "http://localhost:8080")
	t.Setenv("ARK_API_KEY", " key ")
	t.Setenv("ARK_MODEL", "model-id")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Chat.RelayEnabled() || cfg.Chat.ArkAPIKey != "key" {
		t.Errorf("unexpected chat config %+v", cfg.Chat)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " 10.0.0.0/8, ,192.168.0.0/16 ")
	got := getEnvList("TEST_LIST", nil)
	want := []string{"10.0.0.0/8", "192.168.0.0/16"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	def := []string{"127.0.0.0/8"}
	if got := getEnvList("TEST_LIST_UNSET_XYZ", def); !reflect.DeepEqual(got, def) {
		t.Errorf("unset should return default, got %v", got)
	}
}
