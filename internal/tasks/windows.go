package tasks

import (
	"time"

	"github.com/desertthunder/tdx/internal/models"
)

var quarterStarts = []time.Month{time.January, time.April, time.July, time.October}

// WindowOpts bounds the quarterly windows.
type WindowOpts struct {
	StartYear int
	EndYear   int
	EndMonth  time.Month // inclusive cutoff month in EndYear
	Location  *time.Location
}

// QuarterlyWindows returns the fixed calendar quarters from StartYear through the cutoff, in ascending order.
//
// Each window starts at 00:00:00 on the 1st of January, April, July or October and ends at
// 23:59:59 on the last day of the quarter's third month. Quarters that end after the cutoff
// month are not generated.
func QuarterlyWindows(opts WindowOpts) []models.DateWindow {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	windows := []models.DateWindow{}
	for year := opts.StartYear; year <= opts.EndYear; year++ {
		for _, month := range quarterStarts {
			last := month + 2
			if year == opts.EndYear && last > opts.EndMonth {
				break
			}

			windows = append(windows, models.DateWindow{
				Start: time.Date(year, month, 1, 0, 0, 0, 0, loc),
				// day 0 of the following month is the last day of this one
				End: time.Date(year, last+1, 0, 23, 59, 59, 0, loc),
			})
		}
	}

	return windows
}
