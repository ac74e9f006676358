package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/itsmeow/SpongeCommon/internal/config"
	"github.com/itsmeow/SpongeCommon/pkg/api"
)

// runREPL feeds each `command|arg|...` line from in to the bridge and prints
// the response. Blank lines and lines starting with # are skipped.
func (a *app) runREPL(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		fmt.Fprintln(out, a.bridge.Call(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := a.worker.Flush(); err != nil {
		a.logger.Error("Final flush failed", "error", err)
		return err
	}
	return nil
}

// runSetupDB initializes the configured backend, which creates the schema,
// and closes it again.
func (a *app) runSetupDB() error {
	storageCfg := config.GetStorageConfig()
	if storageCfg.Type == "memory" || storageCfg.Type == "" {
		return errors.New("setupdb requires storage.type sqlite or postgres")
	}

	backend, err := a.createStorageBackend(storageCfg)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	ids, err := backend.ListStacks()
	if err != nil {
		_ = backend.Close()
		return err
	}
	a.logger.Info("Database setup complete", "type", storageCfg.Type, "stacks", len(ids))
	return backend.Close()
}

// runPalette prints every dye with its ramp colour and checks that the colour
// maps back to the same dye.
func (a *app) runPalette(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DYE\tID\tRGB\tHEX\tROUNDTRIP")

	var mismatched []string
	for _, d := range api.DyeColors() {
		c := a.colors.FromDyeColor(d)
		back := a.colors.FromColor(c)
		status := "ok"
		if back != d {
			status = "-> " + back.Name()
			mismatched = append(mismatched, d.Name())
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", d.Name(), d.ID(), a.colors.DyeToRGB(d), c.Hex(), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(mismatched) > 0 {
		return fmt.Errorf("palette does not round-trip for: %s", strings.Join(mismatched, ", "))
	}
	return nil
}

// runVariants prints each double plant variant. Optional arguments select the
// variants by raw name.
func (a *app) runVariants(out io.Writer, names []string) error {
	resolvers := a.variants.All()
	if len(names) > 0 {
		resolvers = resolvers[:0:0]
		for _, n := range names {
			r, ok := a.variants.Get(n)
			if !ok {
				return fmt.Errorf("unknown variant %q", n)
			}
			resolvers = append(resolvers, r)
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKEY\tTRANSLATION")
	for _, r := range resolvers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID(), r.Name(), r.TranslationKey(), r.Translation().Get())
	}
	return w.Flush()
}
