package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCommandHelp(t *testing.T) {
	root := &cobra.Command{Use: "wallfade"}
	tests := []struct {
		cmd  *cobra.Command
		name string
	}{
		{NewNextCmd(), "next"},
		{NewStopCmd(), "stop"},
		{NewGenManCmd(root), "genman"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if tt.cmd.Short == "" {
				t.Error("empty Short")
			}
			if !strings.Contains(tt.cmd.Long, "wallfade") {
				t.Errorf("Long does not mention wallfade: %q", tt.cmd.Long)
			}
		})
	}
}

func TestGenManWritesPages(t *testing.T) {
	root := &cobra.Command{Use: "wallfade", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(NewNextCmd(), NewStopCmd())
	genman := NewGenManCmd(root)
	root.AddCommand(genman)

	dir := t.TempDir()
	if err := genman.Args(genman, []string{}); err == nil {
		t.Error("expected an error without an output directory")
	}
	if err := genman.RunE(genman, []string{dir}); err != nil {
		t.Fatalf("genman failed: %v", err)
	}
	for _, page := range []string{"wallfade.1", "wallfade-next.1", "wallfade-stop.1"} {
		data, err := os.ReadFile(filepath.Join(dir, page))
		if err != nil {
			t.Errorf("missing man page: %v", err)
			continue
		}
		if !strings.Contains(string(data), "WALLFADE") {
			t.Errorf("%s has no WALLFADE title", page)
		}
	}
}
