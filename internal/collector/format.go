package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatText writes the summary in human-readable form.
func FormatText(w io.Writer, s *Summary) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "logsynth - Run Summary")
	fmt.Fprintln(w, "======================")
	fmt.Fprintf(w, "Duration:     %v\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Lines:        %s\n", formatNumber(int64(s.Total)))
	fmt.Fprintf(w, "Bytes:        %s\n", formatNumber(s.Bytes))
	fmt.Fprintf(w, "Rate:         %s lines/sec\n", printer.Sprintf("%.1f", s.LinesPerSec))
	if s.WriteErrors > 0 {
		fmt.Fprintf(w, "Write errors: %s\n", formatNumber(s.WriteErrors))
	}
	if s.Dropped > 0 {
		fmt.Fprintf(w, "Dropped:      %d (count not divisible by streams)\n", s.Dropped)
	}
	if s.Interrupted {
		fmt.Fprintln(w, "Status:       interrupted")
	}

	if len(s.Streams) > 1 || s.Failed() {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Streams:")
		for _, st := range s.Streams {
			fmt.Fprintf(w, "  %-15s %s lines", st.Name, formatNumber(int64(st.Emitted)))
			if st.Error != "" {
				fmt.Fprintf(w, "   error: %s", st.Error)
			}
			fmt.Fprintln(w)
		}
	}
}

// FormatJSON writes the summary as an indented JSON document.
func FormatJSON(w io.Writer, s *Summary) {
	output := struct {
		Duration    string          `json:"duration"`
		Total       int             `json:"total"`
		Bytes       int64           `json:"bytes"`
		WriteErrors int64           `json:"writeErrors"`
		LinesPerSec float64         `json:"linesPerSec"`
		Interrupted bool            `json:"interrupted"`
		Dropped     int             `json:"dropped,omitempty"`
		Streams     []StreamSummary `json:"streams"`
	}{
		Duration:    s.Elapsed.Round(time.Millisecond).String(),
		Total:       s.Total,
		Bytes:       s.Bytes,
		WriteErrors: s.WriteErrors,
		LinesPerSec: s.LinesPerSec,
		Interrupted: s.Interrupted,
		Dropped:     s.Dropped,
		Streams:     s.Streams,
	}
	if output.Streams == nil {
		output.Streams = []StreamSummary{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output) // stdout errors are unrecoverable
}

func formatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}
