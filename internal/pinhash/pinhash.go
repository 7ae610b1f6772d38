// Package pinhash implements the provisioning command: it is the only way to
// set a PIN when none is stored yet.
package pinhash

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"golang.org/x/term"
)

var ErrPinMismatch = errors.New("PINs do not match")

// seams for tests
var (
	readPassword         = term.ReadPassword
	openDB               = repomanager.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type Options struct {
	// Store writes the hash to the database instead of printing it.
	Store bool
}

// ParseOptions picks the command's own flags out of args; the server flags
// (-d, -k, ...) are left to config.LoadConfig.
func ParseOptions(args []string) Options {
	filtered := flagx.FilterArgsWithBools(args, []string{"-store"}, []string{"-store"})

	var opts Options
	fs := flag.NewFlagSet("pinhash", flag.ContinueOnError)
	fs.BoolVar(&opts.Store, "store", false, "write the hash to the settings table")
	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}
	return opts
}

func Run(ctx context.Context, cfg *config.Config, opts Options, fd int, out io.Writer) error {
	pin, err := readPIN(fd, out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	if !opts.Store {
		h, err := services.NewPinService(nil, nil, cfg).Hash(string(pin))
		if err != nil {
			return fmt.Errorf("hash error: %w", err)
		}
		fmt.Fprintln(out, h)
		return nil
	}

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if err := services.NewPinService(db, rm, cfg).Provision(ctx, string(pin)); err != nil {
		return fmt.Errorf("provision error: %w", err)
	}
	fmt.Fprintln(out, "PIN stored")
	return nil
}

func readPIN(fd int, out io.Writer) ([]byte, error) {
	fmt.Fprint(out, "PIN: ")
	first, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	fmt.Fprint(out, "Repeat PIN: ")
	second, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		common.WipeByteArray(first)
		return nil, fmt.Errorf("read error: %w", err)
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, ErrPinMismatch
	}
	return first, nil
}
