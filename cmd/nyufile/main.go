// Command nyufile recovers a recently-deleted file from a FAT32 volume
// image. See internal/fat32 for the recovery engine; this file is only
// the thin argument-parsing and disk-mapping plumbing spec.md scopes out
// of the core.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	flags "github.com/jessevdk/go-flags"

	"github.com/shubham/fatrecover/internal/disk"
	"github.com/shubham/fatrecover/internal/fat32"
)

type options struct {
	Info              bool   `short:"i" description:"Print the file system information"`
	List              bool   `short:"l" description:"List the root directory"`
	RecoverContiguous string `short:"r" description:"Recover a contiguous file" value-name:"name"`
	RecoverArbitrary  string `short:"R" description:"Recover a possibly non-contiguous file" value-name:"name"`
	SHA1              string `short:"s" description:"SHA-1 digest of the file to recover" value-name:"sha1"`

	Positional struct {
		Disk string `positional-arg-name:"disk" required:"true"`
	} `positional-args:"true"`
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: nyufile disk <options>")
	fmt.Fprintln(os.Stderr, "  -i                     Print the file system information.")
	fmt.Fprintln(os.Stderr, "  -l                     List the root directory.")
	fmt.Fprintln(os.Stderr, "  -r filename [-s sha1]  Recover a contiguous file.")
	fmt.Fprintln(os.Stderr, "  -R filename -s sha1    Recover a possibly non-contiguous file.")
}

// buildRequest turns the raw flag struct into a validated fat32.Request,
// enforcing the "exactly one primary mode" grammar spec.md §6 describes.
// This is the one piece of logic in main that is genuinely part of the
// CLI grammar rather than pure flag plumbing, the same way the original
// getopt-based parseCMD validated its own flag combination by hand.
func buildRequest(o options) (fat32.Request, error) {
	count := 0
	for _, set := range []bool{o.Info, o.List, o.RecoverContiguous != "", o.RecoverArbitrary != ""} {
		if set {
			count++
		}
	}
	if count != 1 {
		return fat32.Request{}, fmt.Errorf("exactly one of -i, -l, -r, -R is required")
	}

	var digest *[20]byte
	if o.SHA1 != "" {
		raw, err := hex.DecodeString(o.SHA1)
		if err != nil || len(raw) != 20 {
			return fat32.Request{}, fmt.Errorf("-s requires a 40-character hex SHA-1 digest")
		}
		var d [20]byte
		copy(d[:], raw)
		digest = &d
	}

	switch {
	case o.Info:
		return fat32.ParseRequest(fat32.ModeInfo, "", digest)
	case o.List:
		return fat32.ParseRequest(fat32.ModeList, "", digest)
	case o.RecoverContiguous != "":
		return fat32.ParseRequest(fat32.ModeRecoverContiguous, o.RecoverContiguous, digest)
	default:
		return fat32.ParseRequest(fat32.ModeRecoverArbitrary, o.RecoverArbitrary, digest)
	}
}

func main() {
	defer func() {
		if state := recover(); state != nil {
			err, ok := state.(error)
			if !ok {
				err = fmt.Errorf("%v", state)
			}
			log.PrintError(log.Wrap(err))
			os.Exit(1)
		}
	}()

	var o options
	parser := flags.NewParser(&o, flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		usage()
		os.Exit(1)
	}

	req, err := buildRequest(o)
	if err != nil {
		usage()
		os.Exit(1)
	}

	dev, err := disk.Open(o.Positional.Disk)
	log.PanicIf(err)
	defer dev.Close()

	if err := fat32.Dispatch(req, dev.Bytes(), os.Stdout); err != nil {
		log.PanicIf(err)
	}

	log.PanicIf(dev.Sync())
}
