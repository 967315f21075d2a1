package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kingrea/sizegate/internal/artifact"
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

// MetadataOption customizes the metadata written for an artifact.
type MetadataOption func(*artifact.Metadata)

// WithNote records a single key/value note in metadata.
func WithNote(key, value string) MetadataOption {
	return func(meta *artifact.Metadata) {
		key = strings.TrimSpace(key)
		if key == "" || strings.TrimSpace(value) == "" {
			return
		}
		if meta.Notes == nil {
			meta.Notes = map[string]string{}
		}
		meta.Notes[key] = value
	}
}

// ValidateContext ensures modules receive a usable context.
func ValidateContext(moduleID string, ctx *module.ModuleContext) error {
	if ctx == nil {
		return fmt.Errorf("%s: context is nil", moduleID)
	}
	if ctx.Config == nil {
		return fmt.Errorf("%s: config is required", moduleID)
	}
	if strings.TrimSpace(ctx.Config.ProjectDir) == "" {
		return fmt.Errorf("%s: project directory is required", moduleID)
	}
	if ctx.WriteReport && ctx.Artifacts == nil {
		return fmt.Errorf("%s: artifact store is required to write reports", moduleID)
	}
	return nil
}

// WriteSizeReport renders report as markdown and stores it as the check's
// size report artifact.
func WriteSizeReport(ctx *module.ModuleContext, info module.Info, report sizecheck.Report, opts ...MetadataOption) error {
	ref := artifact.SizeReportDoc(info.ID)
	meta := artifact.Metadata{
		ArtifactID: ref.ID,
		CheckID:    info.ID,
		Version:    info.Version,
		RunID:      ctx.RunID,
	}
	base := []MetadataOption{
		WithNote("total", strconv.FormatInt(report.Total, 10)),
		WithNote("threshold", strconv.FormatInt(report.Threshold, 10)),
		WithNote("exceeded", strconv.FormatBool(report.Exceeded())),
	}
	for _, opt := range append(base, opts...) {
		if opt != nil {
			opt(&meta)
		}
	}
	body := RenderSizeReport(info.Label(), report)
	if err := ctx.Artifacts.Write(ref, body, meta); err != nil {
		return fmt.Errorf("%s: write %s: %w", info.ID, ref.ID, err)
	}
	return nil
}

// RenderSizeReport formats a report as a markdown table.
func RenderSizeReport(title string, report sizecheck.Report) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Size report: %s\n\n", title)
	b.WriteString("| Directory | Files | Bytes | Size |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	files := 0
	for _, dir := range report.Dirs {
		files += dir.Files
		fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", dir.Path, dir.Files, dir.Bytes, sizecheck.HumanSize(dir.Bytes))
	}
	fmt.Fprintf(&b, "| **Total** | %d | %d | %s |\n\n", files, report.Total, sizecheck.HumanSize(report.Total))
	fmt.Fprintf(&b, "Threshold: %d bytes (%s)\n\n", report.Threshold, sizecheck.HumanSize(report.Threshold))
	if report.Exceeded() {
		fmt.Fprintf(&b, "Status: **exceeded** by %d bytes\n", -report.Headroom())
	} else {
		fmt.Fprintf(&b, "Status: within limit, %d bytes of headroom\n", report.Headroom())
	}
	if len(report.Watched) > 0 {
		b.WriteString("\n## Watched files\n\n")
		for _, file := range report.Watched {
			fmt.Fprintf(&b, "- `%s`: %d bytes\n", file.Path, file.Bytes)
		}
	}
	return []byte(b.String())
}
