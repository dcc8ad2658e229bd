package main

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestPageIndices(t *testing.T) {
	if diff := cmp.Diff([]int{11, 0}, pageIndices([]int{12, 1})); diff != "" {
		t.Errorf("pageIndices mismatch (-want +got):\n%s", diff)
	}
}

func TestRequiredFlags(t *testing.T) {
	verbose := false
	tests := []struct {
		cmd  *cobra.Command
		args []string
		flag string
	}{
		{extractCmd(&verbose), nil, "source-dir"},
		{backfillCmd(&verbose), nil, "source-dir"},
		{ingestCmd(&verbose), []string{"--pdf", "x.pdf"}, "doc-id"},
		{tocCmd(&verbose), nil, "pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			tt.cmd.SetArgs(tt.args)
			tt.cmd.SetOut(io.Discard)
			tt.cmd.SetErr(io.Discard)
			err := tt.cmd.Execute()
			if err == nil || !strings.Contains(err.Error(), tt.flag) {
				t.Errorf("Execute() error = %v, want missing %q", err, tt.flag)
			}
		})
	}
}
