// Package secrets loads the OAuth client credentials from the 1Password CLI.
// The CLI is an external collaborator: when it is not installed or the user
// is not signed in, the lookup fails closed by returning no credentials so
// the caller can print remediation steps instead of a stack trace.
package secrets

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/tidwall/gjson"

	"github.com/ahd-playgrounds/google-task-cli/internal/logger"
)

const opBinary = "op"

// Credentials holds the OAuth client identity fetched from the vault item.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Provider resolves credentials from a named item in a named vault.
type Provider struct {
	Vault string
	Item  string
}

func NewProvider(vault, item string) *Provider {
	return &Provider{Vault: vault, Item: item}
}

// Lookup fetches the client_id and client_secret fields of the configured
// item. It returns (nil, nil) when the op CLI is unavailable or the session
// is not signed in; it returns an error only for unexpected output.
func (p *Provider) Lookup(ctx context.Context) (*Credentials, error) {
	opPath, err := exec.LookPath(opBinary)
	if err != nil {
		logger.Warn("1Password CLI not found in PATH", "binary", opBinary)
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, opPath, "item", "get", p.Item, "--vault", p.Vault, "--format", "json")
	output, err := cmd.Output()
	if err != nil {
		// Covers signed-out sessions, unknown vaults and unknown items; the
		// CLI reports these on stderr and exits nonzero.
		logger.Warn("1Password CLI lookup failed", "vault", p.Vault, "item", p.Item, "error", err)
		return nil, nil
	}

	creds, err := parseItemFields(output)
	if err != nil {
		return nil, fmt.Errorf("unexpected op output for item %q: %w", p.Item, err)
	}

	logger.Debug("loaded OAuth client credentials", "vault", p.Vault, "item", p.Item)
	return creds, nil
}

// parseItemFields extracts the client_id/client_secret fields from the
// `op item get --format json` payload.
func parseItemFields(data []byte) (*Credentials, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("not valid JSON")
	}

	clientID := gjson.GetBytes(data, `fields.#(label=="client_id").value`)
	clientSecret := gjson.GetBytes(data, `fields.#(label=="client_secret").value`)

	if !clientID.Exists() || clientID.String() == "" {
		return nil, fmt.Errorf("missing client_id field")
	}
	if !clientSecret.Exists() || clientSecret.String() == "" {
		return nil, fmt.Errorf("missing client_secret field")
	}

	return &Credentials{
		ClientID:     clientID.String(),
		ClientSecret: clientSecret.String(),
	}, nil
}
