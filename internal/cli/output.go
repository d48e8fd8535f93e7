package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) printer {
	return printer{w: w, format: strings.ToLower(format)}
}

func (p printer) validate() error {
	switch p.format {
	case formatJSON, formatYAML, "yml":
		return nil
	}
	return errors.Wrap(errUnknownFormat, p.format)
}

// Print writes v in the selected format. YAML is produced from the JSON form so both
// formats show the same field names.
func (p printer) Print(v any) error {
	if p.format == formatJSON {
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "[printer.Print] marshal")
		}
		_, err = fmt.Fprintln(p.w, string(raw))
		return err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "[printer.Print] marshal")
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return errors.Wrap(err, "[printer.Print] decode")
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return errors.Wrap(err, "[printer.Print] encode yaml")
	}
	return enc.Close()
}

// PrintResponse prints the data of a backend response.
func (p printer) PrintResponse(resp *client.Response) error {
	var data any
	if err := resp.DecodeData(&data); err != nil {
		return errors.Wrap(err, "[printer.PrintResponse] decode")
	}
	return p.Print(data)
}

func (p printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
