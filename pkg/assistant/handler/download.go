package handler

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// DownloadHandler describes how an export will be structured. It never
// calls the LLM: the response is built deterministically, and actual file
// generation belongs to a separate export collaborator.
type DownloadHandler struct {
	supportedFormats []string
	logger           *log.Logger
}

func NewDownloadHandler(logger *log.Logger) *DownloadHandler {
	return &DownloadHandler{
		supportedFormats: []string{"csv", "json", "excel", "xlsx"},
		logger:           logger,
	}
}

func (h *DownloadHandler) Name() string { return "DownloadHandler" }

func (h *DownloadHandler) Handle(ctx context.Context, in *Input) (*Outcome, error) {
	format := h.detectFormat(in.Text)

	if in.Context.IsZero() {
		return &Outcome{
			Answer: fmt.Sprintf(
				"I don't have any data to export at the moment. "+
					"Please perform an analysis or comparison first, and then "+
					"I can export the data as %s.", strings.ToUpper(format)),
		}, nil
	}

	return &Outcome{Answer: h.describeExport(format, in)}, nil
}

// detectFormat scans the message for a requested export format, defaulting
// to csv.
func (h *DownloadHandler) detectFormat(message string) string {
	lower := strings.ToLower(message)
	for _, fmtName := range h.supportedFormats {
		if strings.Contains(lower, fmtName) {
			h.logger.Printf("[DOWNLOAD] Detected format: %s", fmtName)
			return fmtName
		}
	}
	h.logger.Printf("[DOWNLOAD] No format detected, defaulting to csv")
	return "csv"
}

func (h *DownloadHandler) describeExport(format string, in *Input) string {
	var b strings.Builder
	b.WriteString("## Data Export Request\n\n")
	b.WriteString(fmt.Sprintf("I'm preparing to export your data in **%s** format.\n\n", strings.ToUpper(format)))

	sc := in.Context
	if len(sc.DriverCodes) > 0 {
		b.WriteString(fmt.Sprintf("**Drivers**: %s\n", strings.Join(sc.DriverCodes, ", ")))
	}
	if sc.SessionType != "" {
		b.WriteString(fmt.Sprintf("**Session**: %s\n", sc.SessionType))
	}
	if sc.Year != 0 && sc.EventName != "" {
		b.WriteString(fmt.Sprintf("**Event**: %d %s\n", sc.Year, sc.EventName))
	}

	b.WriteString("\nThe export will contain the telemetry channels and lap data ")
	b.WriteString("from the session above, one row per sample with driver code, ")
	b.WriteString("lap number and timestamp columns. ")
	b.WriteString(fmt.Sprintf("Supported formats: %s.", strings.Join(h.supportedFormats, ", ")))
	return b.String()
}

var _ Handler = &DownloadHandler{}
