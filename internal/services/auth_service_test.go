package services

import (
	"strings"
	"testing"

	"github.com/topoguide/topoguide/internal/config"
)

func TestInitAuthorizerRetriesAfterFailure(t *testing.T) {
	cfg := &config.Config{
		AuthzURL:      "http://127.0.0.1:1",
		AuthzClientID: "test_client",
	}

	err := InitAuthorizer(cfg, "http", "localhost:3000")
	if err == nil {
		t.Fatal("Expected init to fail against an unreachable authorizer")
	}
	if IsAuthorizerInitialized() {
		t.Fatal("Expected client to stay unset after a failed init")
	}

	// A failed attempt must not poison later ones
	err = InitAuthorizer(cfg, "http", "localhost:3000")
	if err == nil {
		t.Fatal("Expected second init attempt to fail too")
	}
	if !strings.Contains(err.Error(), "ping failed") {
		t.Errorf("Expected a ping failure, got %v", err)
	}
	if IsAuthorizerInitialized() {
		t.Error("Expected client to stay unset after a failed retry")
	}
}

func TestValidateSessionWithoutClient(t *testing.T) {
	if IsAuthorizerInitialized() {
		t.Skip("authorizer client already initialized in this process")
	}
	if _, err := ValidateSession("cookie", []string{"contributor"}); err == nil {
		t.Error("Expected error when the client is not initialized")
	}
}
