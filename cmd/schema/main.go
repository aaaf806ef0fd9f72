// Command schema emits the JSON schema for the driftmap wire protocol so
// server implementations and test fixtures can validate their payloads.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	client "driftmap/client"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema := buildSchema()

	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	snapshot := reflector.Reflect(new(client.SnapshotMessage))
	snapshot.Title = "Snapshot Envelope"
	snapshot.Description = "Authoritative full contents for the entity kinds the message names."

	delta := reflector.Reflect(new(client.DeltaMessage))
	delta.Title = "Delta Envelope"
	delta.Description = "Incremental upserts and deletions applied against existing state."

	poll := reflector.Reflect(new(client.PollResponse))
	poll.Title = "Poll Response"
	poll.Description = "Fallback bundle of revisions, changed tiles, and optional character list."

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Driftmap Wire Protocol",
		Description: "Messages accepted by the driftmap client sync core.",
		OneOf: []*jsonschema.Schema{
			snapshot,
			delta,
			poll,
		},
	}
	return root
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
