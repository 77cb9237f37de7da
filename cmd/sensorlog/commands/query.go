// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/sensorlog/cmd/sensorlog/cli"
	"github.com/bureau-foundation/sensorlog/lib/clock"
	"github.com/bureau-foundation/sensorlog/lib/recordlog"
)

type queryParams struct {
	sourceOptions
	cli.LogOptions
	From   string `json:"from" flag:"from" desc:"start of range, inclusive, RFC 3339 or YYYY-MM-DD (default: beginning of time)"`
	To     string `json:"to" flag:"to" desc:"end of range, inclusive, RFC 3339 or YYYY-MM-DD (default: now)"`
	Sensor string `json:"sensor" flag:"sensor,s" desc:"only readings from this sensor id"`
	Sort   bool   `json:"sort" flag:"sort" desc:"order results by timestamp across all files"`
	Format string `json:"format" flag:"format,f" desc:"output format: csv, json, cbor, or table (default: table on a terminal, csv otherwise)"`
}

func queryCommand() *cli.Command {
	var params queryParams
	return &cli.Command{
		Name:    "query",
		Summary: "Print recorded readings in a time range",
		Description: `Scan live record files and archives for readings whose timestamp
falls within [--from, --to], optionally restricted to one sensor.

Results come file by file: live files first, then archives, each in
filename order. Use --sort for a single timestamp order. Malformed
records are skipped and reported as warnings on stderr.`,
		Usage: "sensorlog query [flags]",
		Examples: []cli.Example{
			{
				Description: "Temperature readings for one day as a table",
				Command:     "sensorlog query --sensor T1 --from 2026-03-01 --to 2026-03-01T23:59:59Z --format table",
			},
			{
				Description: "Everything, sorted, as CSV from an explicit directory",
				Command:     "sensorlog query --log-dir /var/lib/sensorlog --sort --format csv",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("query", &params)
		},
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			return runQuery(ctx, params, clock.Real(), stdout, term.IsTerminal(int(os.Stdout.Fd())), logger)
		},
	}
}

func runQuery(ctx context.Context, params queryParams, clk clock.Clock, w io.Writer, terminal bool, logger *slog.Logger) error {
	logDirectory, err := params.logDirectory()
	if err != nil {
		return err
	}

	query := recordlog.Query{SensorID: params.Sensor}
	if query.Start, err = parseTimeFlag("from", params.From, time.Time{}); err != nil {
		return err
	}
	if query.End, err = parseTimeFlag("to", params.To, clk.Now()); err != nil {
		return err
	}
	if query.End.Before(query.Start) {
		return fmt.Errorf("--to (%s) is before --from (%s)",
			query.End.Format(time.RFC3339Nano), query.Start.Format(time.RFC3339Nano))
	}

	format := params.Format
	if format == "" {
		format = formatCSV
		if terminal {
			format = formatTable
		}
	}
	output, err := newRecordWriter(format, w)
	if err != nil {
		return err
	}

	reader := recordlog.NewReader(logDirectory, logger)
	var (
		collected []recordlog.Record
		written   int
		malformed int
	)
	for record, err := range reader.Query(ctx, query) {
		if err != nil {
			var formatErr *recordlog.FormatError
			if !errors.As(err, &formatErr) {
				return err
			}
			malformed++
			logger.Warn("skipping malformed record",
				"path", formatErr.Path,
				"line", formatErr.Line,
				"reason", formatErr.Reason,
			)
			continue
		}
		if params.Sort {
			collected = append(collected, record)
			continue
		}
		if err := output.Write(record); err != nil {
			return err
		}
		written++
	}

	if params.Sort {
		recordlog.SortByTime(collected)
		for _, record := range collected {
			if err := output.Write(record); err != nil {
				return err
			}
		}
		written = len(collected)
	}
	if err := output.Close(); err != nil {
		return err
	}

	if malformed > 0 {
		logger.Warn("malformed records skipped", "count", malformed)
	}
	logger.Debug("query complete",
		"log_dir", logDirectory,
		"records", written,
		"from", query.Start,
		"to", query.End,
		"sensor", query.SensorID,
	)
	return nil
}

// parseTimeFlag parses an RFC 3339 timestamp, a local date-time
// without zone, or a local date. Empty input yields fallback.
func parseTimeFlag(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("--%s: cannot parse %q as RFC 3339 timestamp or YYYY-MM-DD date", name, value)
}
