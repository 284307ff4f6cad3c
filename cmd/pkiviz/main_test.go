package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/pkiviz"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
		want []string
	}{
		{name: "version", args: []string{"version"}, want: []string{"pkiviz version " + pkiviz.Version}},
		{name: "nodes", args: []string{"nodes"}, want: []string{"intermediate-ca", "Certificate Chain"}},
		{name: "flows", args: []string{"flows"}, want: []string{"trust-chain", "revocation"}},
		{name: "show", args: []string{"show", "root-ca"}, want: []string{"# Root CA", "openssl genrsa -aes256"}},
		{name: "highlight", args: []string{"highlight", "openssl", "x509", "-in", "cert.pem"}, want: []string{"openssl x509 -in cert.pem"}},
		{name: "highlight flags", args: []string{"highlight", "openssl", "req", "-new", "-key", "k.pem", "--help"}, want: []string{"openssl req -new -key k.pem --help"}},
		{name: "highlight after root flag", args: []string{"--dark", "highlight", "openssl", "x509", "-noout"}, want: []string{"openssl x509 -noout"}},
		{name: "highlight help", args: []string{"highlight", "-h"}, want: []string{"syntax colouring"}},
		{name: "highlight stdin", args: []string{"highlight", "-"}, in: "openssl req -new\n", want: []string{"openssl req -new"}},
		{name: "graph mermaid", args: []string{"graph"}, want: []string{"graph TD", "root_ca"}},
		{name: "graph flow", args: []string{"graph", "--flow", "mtls", "--select", "step2"}, want: []string{"graph LR", "classDef selected"}},
		{name: "graph svg", args: []string{"graph", "--format", "svg", "--flow", "revocation"}, want: []string{"<svg", "</svg>"}},
		{name: "explore", args: []string{"explore", "--plain"}, in: "select csr\nquit\n", want: []string{"# CSR"}},
		{name: "default explore", args: []string{"--flow", "mtls"}, in: "status\n", want: []string{"Mode: beginner", "mTLS"}},
		{name: "dark flag", args: []string{"--dark", "explore"}, in: "status\n", want: []string{"Theme: dark"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.in, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		want    string
	}{
		{name: "unknown node", args: []string{"show", "nope"}, wantErr: domain.ErrNodeNotFound},
		{name: "unknown flow", args: []string{"graph", "--flow", "nope"}, wantErr: domain.ErrFlowNotFound},
		{name: "bad format", args: []string{"graph", "--format", "png"}, want: "unknown format"},
		{name: "bad step", args: []string{"graph", "--flow", "mtls", "--select", "root-ca"}, want: "not part of flow"},
		{name: "missing config", args: []string{"--config", "missing.yaml", "nodes"}, want: "failed to read config"},
		{name: "show needs id", args: []string{"show"}, want: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestGraphJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	_, err := run(t, "", "graph", "--format", "json", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Nodes []domain.Node `json:"nodes"`
		Links []domain.Link `json:"links"`
		Categories []struct {
			ID string `json:"id"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Nodes, 11)
	assert.Len(t, doc.Links, 16)
	assert.Len(t, doc.Categories, 7)
}

func TestConfigFileOverriddenByFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkiviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dark: true\n"), 0o644))

	out, err := run(t, "status\n", "--config", path, "explore")
	require.NoError(t, err)
	assert.Contains(t, out, "Theme: dark")

	out, err = run(t, "status\n", "--config", path, "--dark=false", "explore")
	require.NoError(t, err)
	assert.Contains(t, out, "Theme: light")
}
