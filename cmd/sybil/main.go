// Sybil CLI - inspect and manage stored feedback profiles
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/sybil/feedback"
	"github.com/chazu/sybil/feedback/snapshot"
	"github.com/chazu/sybil/manifest"
	"github.com/chazu/sybil/store"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("sybil")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	dbPath := flag.String("db", "", "Profile database path (overrides sybil.toml)")
	list := flag.Bool("list", false, "List profiled functions")
	dump := flag.String("dump", "", "Print the stored profile for a function")
	del := flag.String("delete", "", "Delete the stored profile for a function")
	importPath := flag.String("import", "", "Import a CBOR profile file into the database")
	exportFn := flag.String("export", "", "Export a function's profile as CBOR")
	out := flag.String("out", "", "Output file for -export (default stdout)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sybil [options]\n\n")
		fmt.Fprintf(os.Stderr, "Inspects and manages the feedback profile database.\n")
		fmt.Fprintf(os.Stderr, "The database path comes from -db, or from sybil.toml in the\n")
		fmt.Fprintf(os.Stderr, "current directory or any parent.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sybil -list                          # List profiled functions\n")
		fmt.Fprintf(os.Stderr, "  sybil -dump 'Point>>moveBy:'         # Show one profile\n")
		fmt.Fprintf(os.Stderr, "  sybil -export 'Point>>moveBy:' -out p.cbor\n")
		fmt.Fprintf(os.Stderr, "  sybil -import p.cbor                 # Load a profile into the db\n")
		fmt.Fprintf(os.Stderr, "  sybil -db ./profiles.db -list        # Use an explicit database\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	path, err := resolveDBPath(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Debugf("using profile database %s", path)

	st, err := store.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *list:
		err = listProfiles(st)
	case *dump != "":
		err = dumpProfile(st, *dump)
	case *del != "":
		err = st.Delete(*del)
	case *importPath != "":
		err = importProfile(st, *importPath)
	case *exportFn != "":
		err = exportProfile(st, *exportFn, *out)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveDBPath picks the database location: the -db flag if given, else the
// nearest sybil.toml, else the default path in the current directory.
func resolveDBPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return "", err
	}
	if m != nil {
		log.Debugf("found manifest in %s", m.Dir)
		return m.StorePath(), nil
	}
	return ".sybil/profiles.db", nil
}

func listProfiles(st *store.Store) error {
	functions, err := st.List()
	if err != nil {
		return err
	}
	if len(functions) == 0 {
		fmt.Println("No profiles stored.")
		return nil
	}
	for _, fn := range functions {
		p, err := st.Load(fn)
		if err != nil {
			return err
		}
		c := p.StateCounts()
		fmt.Printf("%-40s  typed=%d generic=%d mono=%.0f%%\n",
			fn, p.Typed, p.Generic, c.MonomorphicRate())
	}
	return nil
}

func dumpProfile(st *store.Store, function string) error {
	p, err := st.Load(function)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return fmt.Errorf("no profile for %q", function)
		}
		return err
	}

	fmt.Printf("%s\n", p.Function)
	fmt.Printf("  captured: %s\n", time.Unix(p.CapturedAt, 0).Format(time.RFC3339))
	fmt.Printf("  typed=%d generic=%d\n", p.Typed, p.Generic)
	for _, sp := range p.Slots {
		if sp.State == "" {
			fmt.Printf("  slot %2d  %-12s\n", sp.Slot, sp.Kind)
			continue
		}
		fmt.Printf("  slot %2d  %-12s %-14s", sp.Slot, sp.Kind, sp.State)
		if sp.ShapeCount > 0 {
			fmt.Printf(" shapes=%d", sp.ShapeCount)
		}
		if sp.SiteLabel != "" {
			fmt.Printf(" site=%s hits=%d", sp.SiteLabel, sp.SiteHits)
		}
		fmt.Println()
	}

	c := p.StateCounts()
	fmt.Printf("  states: %s\n", formatStateCounts(c))
	return nil
}

func formatStateCounts(c feedback.StateCounts) string {
	return fmt.Sprintf("uninit=%d premono=%d mono=%d poly=%d mega=%d generic=%d (mono rate %.1f%%)",
		c.Uninitialized, c.Premonomorphic, c.Monomorphic,
		c.Polymorphic, c.Megamorphic, c.Generic, c.MonomorphicRate())
}

func importProfile(st *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := snapshot.UnmarshalProfile(data)
	if err != nil {
		return err
	}
	if err := st.Save(p); err != nil {
		return err
	}
	log.Infof("imported profile for %s", p.Function)
	fmt.Printf("Imported %s\n", p.Function)
	return nil
}

func exportProfile(st *store.Store, function, out string) error {
	p, err := st.Load(function)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return fmt.Errorf("no profile for %q", function)
		}
		return err
	}
	data, err := snapshot.MarshalProfile(p)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	log.Infof("exported profile for %s to %s", function, out)
	return nil
}
