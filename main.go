package main

import (
	"os"

	"github.com/compozy/modhost/cli"
	_ "github.com/compozy/modhost/modules/admin"
	_ "github.com/compozy/modhost/modules/blog"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
