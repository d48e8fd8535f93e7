package cli

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// bodyFlags collect a request body from --data, --file and --set.
type bodyFlags struct {
	data string
	file string
	set  []string
}

func (b *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.data, "data", "", "JSON body")
	cmd.Flags().StringVarP(&b.file, "file", "f", "", "JSON or YAML file with the body, - for stdin")
	cmd.Flags().StringArrayVar(&b.set, "set", nil, "Field to set as key=value, repeatable")
}

// build merges the file, the inline JSON and the --set pairs, in that order.
func (b *bodyFlags) build(stdin io.Reader) (map[string]any, error) {
	body := map[string]any{}

	if b.file != "" {
		var raw []byte
		var err error
		if b.file == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(b.file)
		}
		if err != nil {
			return nil, errors.Wrap(err, "[bodyFlags.build] read body file")
		}
		// YAML is a superset of JSON.
		if err := yaml.Unmarshal(raw, &body); err != nil {
			return nil, errors.Wrapf(err, "[bodyFlags.build] parse %s", b.file)
		}
	}
	if b.data != "" {
		if err := json.Unmarshal([]byte(b.data), &body); err != nil {
			return nil, errors.Wrap(err, "[bodyFlags.build] parse --data")
		}
	}
	for _, kv := range b.set {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, errors.Errorf("invalid --set %q, expected key=value", kv)
		}
		body[k] = scalar(v)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// scalar keeps numbers and booleans typed so --set maxParticipants=32 sends a number.
func scalar(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
