package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-trip-keeper/models"
)

var pushCmd = &cobra.Command{
	Use:   "push <changes.json>",
	Short: "Push a batch of offline changes",
	Long: `Push reads a sync batch ({"changes": [...], "lastSyncedAt": ...}) from
the given file, or from stdin when the file is "-", and prints the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var batch models.SyncBatch
		if err := readJSON(cmd, args[0], &batch); err != nil {
			return err
		}

		client, err := newAdapter()
		if err != nil {
			return err
		}

		result, err := client.Push(cmd.Context(), batch)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var pullSince string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull server changes",
	Long: `Pull prints every row written after --since, or a full snapshot when
--since is omitted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var since *time.Time
		if pullSince != "" {
			t, err := time.Parse(time.RFC3339Nano, pullSince)
			if err != nil {
				return fmt.Errorf("--since must be an RFC 3339 timestamp: %w", err)
			}
			since = &t
		}

		client, err := newAdapter()
		if err != nil {
			return err
		}

		result, err := client.Pull(cmd.Context(), since)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var resolveRequest struct {
	entityType string
	entityID   string
	resolution string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Acknowledge a conflict settled on this device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAdapter()
		if err != nil {
			return err
		}

		result, err := client.Resolve(cmd.Context(), models.ResolveRequest{
			EntityType: models.EntityType(resolveRequest.entityType),
			EntityID:   resolveRequest.entityID,
			Resolution: models.Resolution(resolveRequest.resolution),
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <dataset.json>",
	Short: "Import a whole offline dataset",
	Long: `Migrate reads {"trips": [...], "destinations": [...], "expenses": [...]}
from the given file, or from stdin when the file is "-". The import is all
or nothing with respect to server failures; rejected records are counted
and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req models.MigrationRequest
		if err := readJSON(cmd, args[0], &req); err != nil {
			return err
		}

		client, err := newAdapter()
		if err != nil {
			return err
		}

		result, err := client.Migrate(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var versionCmd = &cobra.Command{
	Use:   "server-version",
	Short: "Print the server version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAdapter()
		if err != nil {
			return err
		}

		version, err := client.Version(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}

func init() {
	pullCmd.Flags().StringVar(&pullSince, "since", "", "watermark returned by the previous sync (RFC 3339)")

	resolveCmd.Flags().StringVar(&resolveRequest.entityType, "type", "", "entity type: trip, destination or expense")
	resolveCmd.Flags().StringVar(&resolveRequest.entityID, "id", "", "entity id")
	resolveCmd.Flags().StringVar(&resolveRequest.resolution, "resolution", "", "keep_local or keep_server")
	_ = resolveCmd.MarkFlagRequired("type")
	_ = resolveCmd.MarkFlagRequired("id")
	_ = resolveCmd.MarkFlagRequired("resolution")
}

func readJSON(cmd *cobra.Command, path string, dst any) error {
	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	if err := json.NewDecoder(in).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
