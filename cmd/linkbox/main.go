// linkbox is a self-hosted bookmark organizer: links, folders, tags and search
// over a pluggable key-value store.
package main

import (
	"os"

	"github.com/MrSnakeDoc/linkbox/cmd/linkbox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
