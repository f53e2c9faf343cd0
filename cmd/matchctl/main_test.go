package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return root.Execute()
}

// ==========================
// Argument validation
// ==========================

func TestCommands_RejectBadArgumentsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "compute needs two ids", args: []string{"compute", "s-1"}, wantErr: "accepts 2 arg(s)"},
		{name: "compute flags conflict", args: []string{"compute", "s-1", "i-1", "--force", "--read-only"}, wantErr: "mutually exclusive"},
		{name: "feedback side required", args: []string{"feedback", "m-1", "--rating", "3"}, wantErr: "side"},
		{name: "feedback bad side", args: []string{"feedback", "m-1", "--side", "founder", "--rating", "3"}, wantErr: "--side"},
		{name: "feedback bad rating", args: []string{"feedback", "m-1", "--side", "startup", "--rating", "9"}, wantErr: "--rating"},
		{name: "feedback without rating or notes", args: []string{"feedback", "m-1", "--side", "investor"}, wantErr: "--notes"},
		{name: "feedback bad outcome", args: []string{"feedback", "m-1", "--side", "startup", "--rating", "3", "--outcome", "ipo"}, wantErr: "--outcome"},
		{name: "status unknown", args: []string{"status", "m-1", "pending"}, wantErr: "unknown status"},
		{name: "expire takes no args", args: []string{"expire", "now"}, wantErr: "unknown command"},
		{name: "import missing file", args: []string{"import", "/nonexistent/bundle.json"}, wantErr: "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// Import bundle
// ==========================

func TestReadImportFile_DerivesIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"startups": [{"name": "Ledger Lane Inc", "stage": "seed", "industry": "fintech"}],
		"investors": [{"id": "inv-7", "name": "Northwind Ventures", "acceptedStages": ["seed"]}]
	}`), 0o600))

	bundle, err := readImportFile(path)
	require.NoError(t, err)

	require.Len(t, bundle.Startups, 1)
	assert.Equal(t, "ledger-lane-inc", bundle.Startups[0].ID)
	require.Len(t, bundle.Investors, 1)
	assert.Equal(t, "inv-7", bundle.Investors[0].ID)
}

func TestReadImportFile_RequiresIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"investors": [{"acceptedStages": ["seed"]}]}`), 0o600))

	_, err := readImportFile(path)
	assert.ErrorContains(t, err, "investor #1")
}
