/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package app

import (
    "io"

    "github.com/spf13/cobra"
)

var (
    rootCmd = &cobra.Command{
        Use:           "capacityctl",
        Short:         "Team capacity and workload reports from Jira",
        SilenceUsage:  true,
        SilenceErrors: true,
    }

    verbose    bool
    reportDays int
    reportJSON bool
    rosterDays int

    reportHandler = handleReport
    rosterHandler = handleRoster
)

func Execute() error {
    return rootCmd.Execute()
}

func init() {
    rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

    reportCmd.Flags().IntVarP(&reportDays, "days", "d", 0, "Reporting period in days (default DEFAULT_PERIOD_DAYS)")
    reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the raw report JSON")
    rosterCmd.Flags().IntVarP(&rosterDays, "days", "d", 0, "Period used to compute available hours")

    rootCmd.AddCommand(reportCmd)
    rootCmd.AddCommand(rosterCmd)
}

var reportCmd = &cobra.Command{
    Use:   "report",
    Short: "Fetch tickets and print the capacity report",
    Args:  cobra.NoArgs,
    RunE: func(cmd *cobra.Command, args []string) error {
        return reportHandler(cmd.Context(), reportDays, reportJSON, out(cmd))
    },
}

var rosterCmd = &cobra.Command{
    Use:   "roster",
    Short: "Print the effective team roster and available capacity",
    Args:  cobra.NoArgs,
    RunE: func(cmd *cobra.Command, args []string) error {
        return rosterHandler(rosterDays, out(cmd))
    },
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
