package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filesort/internal/classifier"
	"filesort/internal/logging"
	"filesort/internal/preflight"
)

const privacyNotice = `Privacy: filesort sends only the file name, its MIME type, and its creation
date to the selected provider. File contents never leave this machine.`

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor [directory]",
		Short: "Check configuration, paths, and provider connectivity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			classifierCfg, err := classifier.ConfigFor(cfg)
			if err != nil {
				return err
			}
			printKeyValues(out, [][2]string{
				{"Config", ctx.configPath},
				{"Config file present", yesNo(ctx.configExists)},
				{"Provider", string(classifierCfg.Kind)},
				{"Model", classifierCfg.Model},
				{"Request interval", formatDuration(cfg.RequestInterval())},
				{"Notifications", yesNo(cfg.Notifications.NtfyTopic != "")},
			})
			fmt.Fprintln(out)
			fmt.Fprintln(out, privacyNotice)
			fmt.Fprintln(out)

			opts := preflight.Options{}
			if len(args) > 0 {
				opts.SourceDir = args[0]
			}
			if !offline && classifierCfg.APIKey != "" {
				cls, err := classifier.New(classifierCfg, logging.NewNop())
				if err != nil {
					return err
				}
				opts.Pinger = cls
			}

			results := preflight.RunAll(cmd.Context(), cfg, opts)
			fmt.Fprintln(out, renderChecksTable(results))
			if offline {
				fmt.Fprintln(out, "Provider check skipped")
			}
			if failed := preflight.Failed(results); failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the provider request")
	return cmd
}

func renderChecksTable(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}
