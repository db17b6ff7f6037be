// Package export renders read-only projections of the ledger for use
// outside the extension.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
)

var csvHeader = []string{
	"tracked_at", "platform", "job_title", "company", "location",
	"salary_range", "job_url", "sync_status", "remote_id", "sync_error",
}

// WriteCSV writes the display fields of every record, one row per record,
// in the order given.
func WriteCSV(w io.Writer, records []job.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		remoteID := ""
		if rec.RemoteID != nil {
			remoteID = strconv.FormatInt(*rec.RemoteID, 10)
		}
		row := []string{
			rec.TrackedAt.UTC().Format(time.RFC3339),
			string(rec.Platform),
			rec.JobTitle,
			rec.Company,
			rec.Location,
			rec.SalaryRange,
			rec.JobURL,
			string(rec.SyncStatus),
			remoteID,
			rec.SyncError,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
