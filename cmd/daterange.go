package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/klyro-io/klyro-cli/internal/domain"
)

const dateLayout = "2006-01-02"

// defaultWindowDays matches the window the store prefetches on project
// switch, so range-less commands hit warm cache entries.
const defaultWindowDays = 30

type rangeFlags struct {
	start string
	end   string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD, default 30 days ago)")
	cmd.Flags().StringVar(&f.end, "end", "", "End date (YYYY-MM-DD, default today)")
}

func (f *rangeFlags) resolve(now time.Time) (domain.DateRange, error) {
	dr := domain.DateRange{
		StartDate: now.AddDate(0, 0, -defaultWindowDays).Format(dateLayout),
		EndDate:   now.Format(dateLayout),
	}

	if f.start != "" {
		if _, err := time.Parse(dateLayout, f.start); err != nil {
			return domain.DateRange{}, fmt.Errorf("invalid --start date %q: expected YYYY-MM-DD", f.start)
		}
		dr.StartDate = f.start
	}
	if f.end != "" {
		if _, err := time.Parse(dateLayout, f.end); err != nil {
			return domain.DateRange{}, fmt.Errorf("invalid --end date %q: expected YYYY-MM-DD", f.end)
		}
		dr.EndDate = f.end
	}

	if dr.StartDate > dr.EndDate {
		return domain.DateRange{}, fmt.Errorf("start date %s is after end date %s", dr.StartDate, dr.EndDate)
	}
	return dr, nil
}
