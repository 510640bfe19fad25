package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
)

const usage = `usage: formflow-cli <command> [flags] <catalog file>

commands:
  validate   check every service schema in the file
  fill       prompt for a service form in the terminal and print the record
  openapi    print the OpenAPI document for the file's services
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(strings.TrimSpace(usage))
	}
	switch args[0] {
	case "validate":
		return runValidate(args[1:], stdout)
	case "fill":
		return runFill(ctx, args[1:], stdout)
	case "openapi":
		return runOpenAPI(args[1:], stdout)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func runValidate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	catalog, err := loadCatalog(fs)
	if err != nil {
		return err
	}
	for _, svc := range catalog.Services() {
		fmt.Fprintf(stdout, "ok  %s (%d fields)\n", svc.ID, len(svc.FormSchema))
	}
	return nil
}

func runFill(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	serviceID := fs.String("service", "", "service id to fill")
	format := fs.String("format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	catalog, err := loadCatalog(fs)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(*serviceID)
	if id == "" {
		ids := catalog.IDs()
		if len(ids) != 1 {
			return fmt.Errorf("fill: -service is required, available: %s", strings.Join(ids, ", "))
		}
		id = ids[0]
	}
	svc, ok := catalog.Service(id)
	if !ok {
		return fmt.Errorf("fill: unknown service %q", id)
	}

	renderer, err := tui.New(
		tui.WithOutputFormat(tui.OutputFormat(*format)),
		tui.WithStdio(os.Stdin, os.Stderr, os.Stderr),
	)
	if err != nil {
		return err
	}
	payload, err := renderer.Render(ctx, svc, render.RenderOptions{})
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			return fmt.Errorf("fill: write %s: %w", *output, err)
		}
		fmt.Fprintf(stdout, "Record written to %s\n", *output)
		return nil
	}
	fmt.Fprintln(stdout, string(payload))
	return nil
}

func runOpenAPI(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("openapi", flag.ContinueOnError)
	title := fs.String("title", "formflow", "document title")
	version := fs.String("version", "1.0.0", "document version")
	if err := fs.Parse(args); err != nil {
		return err
	}
	catalog, err := loadCatalog(fs)
	if err != nil {
		return err
	}

	doc := openapi.Document(openapi.Info{Title: *title, Version: *version}, catalog.Services())
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("openapi: encode: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func loadCatalog(fs *flag.FlagSet) (*schema.Catalog, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%s: expected exactly one catalog file", fs.Name())
	}
	return schema.LoadFile(fs.Arg(0))
}
