package validate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"voicenotes/internal/app/security"
	"voicenotes/internal/config"
)

var rejectOnHeuristics bool

// Cmd runs the ingestion pipeline against local files and prints each
// verdict. Useful for checking what the service would do with a given file
// without standing up the API.
var Cmd = &cobra.Command{
	Use:   "validate <file> [file...]",
	Short: "Run the upload validation pipeline on local files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pipelineCfg := security.Config{
			MaxUploadSize:   cfg.Upload.MaxUploadSize,
			TempDir:         cfg.Upload.TempDir,
			HeuristicPolicy: cfg.Upload.HeuristicPolicy,
		}
		if rejectOnHeuristics {
			pipelineCfg.HeuristicPolicy = security.HeuristicReject
		}
		validator := security.NewValidator(pipelineCfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))

		failed := 0
		for _, path := range args {
			payload, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("%s: READ ERROR: %v\n", path, err)
				failed++
				continue
			}

			info, rej := validator.Validate(filepath.Base(path), payload)
			if rej != nil {
				fmt.Printf("%s: REJECTED (%s): %s\n", path, rej.Kind, rej.Detail)
				failed++
				continue
			}

			if info.HeuristicWarning != "" {
				fmt.Printf("%s: ACCEPTED with warning (%s, %d bytes): %s\n",
					path, info.Format, info.Size, info.HeuristicWarning)
			} else {
				fmt.Printf("%s: ACCEPTED (%s, %d bytes)\n", path, info.Format, info.Size)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files rejected", failed, len(args))
		}
		return nil
	},
}

func init() {
	Cmd.Flags().BoolVar(&rejectOnHeuristics, "strict", false, "reject files the malware heuristics flag instead of warning")
}
