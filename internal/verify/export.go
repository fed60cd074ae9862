package verify

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var exportHeader = []string{
	"id", "recording_id", "verified_by", "is_secondary",
	"volume_is_low", "volume_is_high", "wrong_wording", "has_glitch",
	"glitch_outside_trim", "is_ok", "comment", "trim_start", "trim_end",
	"created_at",
}

// ExportTSV writes every verdict as tab-separated values, newest first.
func (s *Service) ExportTSV(ctx context.Context, w io.Writer) error {
	verifications, err := s.store.ListVerifications(ctx, 0, 0)
	if err != nil {
		return classify("export", err)
	}

	if _, err := fmt.Fprintln(w, strings.Join(exportHeader, "\t")); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, v := range verifications {
		fields := []string{
			strconv.FormatInt(v.ID, 10),
			strconv.FormatInt(v.RecordingID, 10),
			strconv.FormatInt(v.ReviewerID, 10),
			tsvBool(v.IsSecondary),
			tsvBool(v.VolumeIsLow),
			tsvBool(v.VolumeIsHigh),
			tsvBool(v.WrongWording),
			tsvBool(v.HasGlitch),
			tsvBool(v.GlitchOutsideTrim),
			tsvBool(v.IsOK),
			tsvEscape(v.Comment),
			tsvFloat(v.TrimStart),
			tsvFloat(v.TrimEnd),
			v.CreatedAt.UTC().Format(time.RFC3339),
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}
	return nil
}

func tsvBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func tsvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func tsvEscape(s string) string {
	replacer := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	return replacer.Replace(s)
}
