// Command pinhash reads a PIN from the terminal and either prints its bcrypt
// hash or, with -store, writes it to the settings table.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/pinhash"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()
	opts := pinhash.ParseOptions(os.Args[1:])

	if err := pinhash.Run(context.Background(), cfg, opts, int(os.Stdin.Fd()), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
