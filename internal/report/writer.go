package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/gdprscan/internal/model"
)

// Writer renders a scan result to a destination.
type Writer interface {
	// Write renders one result and returns the number of bytes written.
	Write(result *model.ScanResult) (int, error)
}

// MultiWriter writes each result to several Writers in turn.
// Writer is not io.Writer, so io.MultiWriter does not apply.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to every Writer and stops on the first error.
func (m *MultiWriter) Write(result *model.ScanResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// riskLevels lists risk levels from most to least severe.
var riskLevels = []model.RiskLevel{
	model.RiskCritical,
	model.RiskHigh,
	model.RiskMedium,
	model.RiskLow,
}

// statusText describes how the scan ended.
func statusText(result *model.ScanResult) string {
	switch {
	case result.Aborted:
		if len(result.Errors) > 0 {
			return "Aborted: " + result.Errors[0]
		}
		return "Aborted"
	case result.TimedOut:
		return "Timed out (partial results)"
	case len(result.Errors) > 0:
		return "Completed with errors"
	default:
		return "Complete"
	}
}

// yesNo renders a boolean for humans.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// overviewRow is one labelled line of the findings overview.
type overviewRow struct {
	label string
	value string
}

// overview summarizes what each analyzer observed.
func overview(result *model.ScanResult) []overviewRow {
	banner := "not found"
	if result.ConsentBanner.Found {
		banner = "found"
		if result.ConsentBanner.Platform != "" {
			banner += " (" + result.ConsentBanner.Platform + ")"
		}
	}

	policy := "not found"
	if result.PrivacyPolicy.Found {
		policy = result.PrivacyPolicy.URL
		if policy == "" {
			policy = "found"
		}
	}

	rows := []overviewRow{
		{"Cookies", fmt.Sprintf("%d (%d before consent)", len(result.Cookies), len(result.CookiesBeforeConsent()))},
		{"Trackers", fmt.Sprintf("%d (%d before consent)", len(result.Trackers), len(result.TrackersBeforeConsent()))},
		{"Third-party requests", fmt.Sprintf("%d (%d before consent)", result.ThirdPartyRequests.Total, result.ThirdPartyRequests.BeforeConsent)},
		{"Consent banner", banner},
		{"Privacy policy", policy},
		{"Data forms", fmt.Sprintf("%d of %d forms", result.Forms.DataCollectionForms, result.Forms.TotalForms)},
		{"US services", strconv.Itoa(result.DataTransfers.TotalUSServices)},
	}

	if result.Security.Checked {
		rows = append(rows, overviewRow{"HTTPS", yesNo(result.Security.HTTPSEnabled)})
	}
	if result.SecurityHeaders.Checked {
		rows = append(rows, overviewRow{"Security headers", fmt.Sprintf("%d/100", result.SecurityHeaders.Score)})
	}
	if cert := result.SSLCertificate; cert.Checked {
		tls := "invalid"
		if cert.Valid {
			tls = fmt.Sprintf("valid, expires in %d days", cert.DaysUntilExpiry)
		}
		if cert.Protocol != "" {
			tls += ", " + cert.Protocol
		}
		rows = append(rows, overviewRow{"TLS certificate", tls})
	}
	return rows
}
