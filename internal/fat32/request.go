package fat32

import (
	"fmt"
	"io"
)

// Mode identifies which of the four disjoint request kinds the
// dispatcher (component E) should run.
type Mode int

const (
	ModeInfo Mode = iota
	ModeList
	ModeRecoverContiguous
	ModeRecoverArbitrary
)

// Request is an already-parsed, validated request. Building one outside
// of ParseRequest is only safe if the same invariants are upheld by hand.
type Request struct {
	Mode   Mode
	Name   string
	Digest *[20]byte
}

// ParseRequest applies the grammar constraints from spec.md §4.E/§6 to
// already-separated fields (argument parsing itself is out of this
// engine's scope; cmd/nyufile only needs to hand this function the flags
// it saw).
func ParseRequest(mode Mode, name string, digest *[20]byte) (Request, error) {
	switch mode {
	case ModeInfo, ModeList:
		if digest != nil {
			return Request{}, fmt.Errorf("-s is not allowed with -i or -l")
		}
	case ModeRecoverContiguous:
		// digest optional
	case ModeRecoverArbitrary:
		if digest == nil {
			return Request{}, fmt.Errorf("-R requires -s")
		}
	default:
		return Request{}, fmt.Errorf("unknown request mode")
	}

	if mode == ModeRecoverContiguous || mode == ModeRecoverArbitrary {
		if len(name) > maxNameLen {
			return Request{}, fmt.Errorf("name %q longer than 8.3 allows", name)
		}
	}

	return Request{Mode: mode, Name: name, Digest: digest}, nil
}

func statusText(o Outcome) string {
	switch o {
	case NotFound:
		return "file not found"
	case Ambiguous:
		return "multiple candidates found"
	case Recovered:
		return "successfully recovered"
	case RecoveredWithDigest:
		return "successfully recovered with SHA-1"
	default:
		return "unknown outcome"
	}
}

// Dispatch maps req onto components A-D and writes spec.md §6's exact
// stdout contract to out.
func Dispatch(req Request, disk []byte, out io.Writer) error {
	geo, err := ReadGeometry(disk)
	if err != nil {
		return err
	}

	switch req.Mode {
	case ModeInfo:
		fmt.Fprintf(out, "Number of FATs = %d\n", geo.FATCount)
		fmt.Fprintf(out, "Number of bytes per sector = %d\n", geo.BytesPerSector)
		fmt.Fprintf(out, "Number of sectors per cluster = %d\n", geo.SectorsPerCluster)
		fmt.Fprintf(out, "Number of reserved sectors = %d\n", geo.ReservedSectors)
		return nil

	case ModeList:
		entries, err := ListRoot(disk, geo)
		if err != nil {
			return err
		}
		for _, e := range entries {
			suffix := ""
			if e.IsDirectory {
				suffix = "/"
			}
			fmt.Fprintf(out, "%s%s (size = %d, starting cluster = %d)\n", e.Name, suffix, e.Size, e.FirstCluster)
		}
		fmt.Fprintf(out, "Total number of entries = %d\n", len(entries))
		return nil

	case ModeRecoverContiguous:
		canon, err := CanonicalName(req.Name)
		if err != nil {
			return err
		}
		engine := NewEngine(disk, geo)

		var outcome Outcome
		if req.Digest == nil {
			outcome, err = engine.RecoverUniqueContiguous(canon, canon[0])
		} else {
			outcome, err = engine.RecoverDigestContiguous(canon, canon[0], *req.Digest)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", RenderName(canon), statusText(outcome))
		return nil

	case ModeRecoverArbitrary:
		canon, err := CanonicalName(req.Name)
		if err != nil {
			return err
		}
		engine := NewEngine(disk, geo)

		outcome, err := engine.RecoverDigestArbitrary(canon, canon[0], *req.Digest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", RenderName(canon), statusText(outcome))
		return nil
	}

	return fmt.Errorf("unhandled request mode %v", req.Mode)
}
