package commands

import (
	"testing"
)

func TestNewOrdersCmd_ListFlags(t *testing.T) {
	cmd := NewOrdersCmd()

	for _, sub := range cmd.Commands() {
		if sub.Use != "ls" {
			continue
		}

		for _, flag := range []string{"server", "keyword", "status", "page"} {
			if sub.Flags().Lookup(flag) == nil {
				t.Errorf("expected --%s flag to exist", flag)
			}
		}

		// The server filters on product name only; the help must not
		// promise an order-number match
		keyword := sub.Flags().Lookup("keyword")
		if keyword.Usage != "Filter by product name" {
			t.Errorf("keyword usage = %q, want %q", keyword.Usage, "Filter by product name")
		}
		return
	}

	t.Fatal("orders ls subcommand not found")
}
