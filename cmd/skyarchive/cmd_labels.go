package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sky-archive/photo"
	"sky-archive/timeline"
)

var (
	labelsDay     int
	labelsMarkers bool
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print the timeline labels",
	Long: `Prints the counter, month, season and photo frame of every day, or of
one day with --day. --markers prints the month markers of the timeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		locale := timeline.Locale(cfg.Timeline.Locale)
		out := cmd.OutOrStdout()
		if labelsMarkers {
			return printMarkers(out, locale)
		}
		days := []int{}
		if cmd.Flags().Changed("day") {
			days = append(days, timeline.Clamp(labelsDay))
		} else {
			for d := 0; d < timeline.TotalDays; d++ {
				days = append(days, d)
			}
		}
		return printLabels(out, locale, cfg.RendererSettings().Assets, days)
	},
}

func init() {
	labelsCmd.Flags().IntVarP(&labelsDay, "day", "d", 0, "Only this day")
	labelsCmd.Flags().BoolVar(&labelsMarkers, "markers", false, "Print month markers instead")
}

func printLabels(w io.Writer, locale timeline.Locale, assets photo.AssetSet, days []int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tMONTH\tSEASON\tFRAME")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			timeline.DayLabel(d),
			timeline.CalendarLabelIn(locale, d),
			timeline.SeasonOf(d),
			assets.Index(d)+assets.First)
	}
	return tw.Flush()
}

func printMarkers(w io.Writer, locale timeline.Locale) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tDAY\tPOSITION")
	for _, m := range timeline.Markers(locale) {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\n", m.Label, m.Day+1, m.Position)
	}
	return tw.Flush()
}
